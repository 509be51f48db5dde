// Package storage holds uploaded post images behind a small interface so the
// API can run against local disk in dev and a MinIO/S3 bucket in prod.
// References returned by Save are what gets stored on the post row.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a referenced object does not exist.
var ErrNotFound = errors.New("object not found")

// Object is a stored reference together with its last modification time.
// The sweeper uses ModTime to leave just-uploaded images alone.
type Object struct {
	Ref     string
	ModTime time.Time
}

// FileStore saves, deletes, and enumerates uploaded images.
// Delete is best-effort at the call sites: a failed delete is logged,
// never propagated into the response.
type FileStore interface {
	// Save writes the object and returns the reference to store on the post
	// (a /uploads/... path for local disk, a full URL for s3).
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object a reference points at.
	Delete(ctx context.Context, ref string) error
	// List returns every object currently held, for the orphan sweep.
	List(ctx context.Context) ([]Object, error)
}
