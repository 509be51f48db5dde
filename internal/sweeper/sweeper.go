// Package sweeper removes uploaded images that no post references anymore.
// Post deletion only best-effort-deletes its image, and uploads that were
// never attached to a post linger; the sweep is the backstop for both.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/inkwell/inkwell/internal/metrics"
	"github.com/inkwell/inkwell/internal/repo"
	"github.com/inkwell/inkwell/internal/storage"
	"github.com/robfig/cron/v3"
)

type Sweeper struct {
	Posts *repo.PostRepo
	Files storage.FileStore

	// MinAge keeps objects newer than this out of the sweep. Clients upload
	// the image before submitting the post, so an image with no reference
	// yet may simply belong to a post still being written. Zero means no
	// grace period.
	MinAge time.Duration
}

// Run schedules Sweep at the given cron spec and starts the scheduler.
// Returns the cron so the caller can Stop it on shutdown.
func Run(s *Sweeper, cronSpec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(cronSpec, func() {
		if n, err := s.Sweep(context.Background()); err != nil {
			slog.Error("image sweep failed", "err", err)
		} else if n > 0 {
			slog.Info("image sweep removed orphans", "count", n)
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// Sweep diffs the store's objects against the img references on posts and
// deletes the ones nothing points at, skipping objects younger than MinAge.
// Each delete is independent; one failure is logged and the rest still
// proceed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	referenced, err := s.Posts.ListImages(ctx)
	if err != nil {
		return 0, err
	}
	refSet := make(map[string]bool, len(referenced))
	for _, ref := range referenced {
		refSet[ref] = true
	}

	stored, err := s.Files.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.MinAge)
	removed := 0
	for _, obj := range stored {
		if refSet[obj.Ref] {
			continue
		}
		if s.MinAge > 0 && obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.Files.Delete(ctx, obj.Ref); err != nil {
			slog.Warn("sweep delete failed", "ref", obj.Ref, "err", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		metrics.IncImagesSwept(removed)
	}
	return removed, nil
}
