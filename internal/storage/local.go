package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// publicPrefix is the URL prefix local references are served under.
const publicPrefix = "/uploads/"

// LocalStore keeps image bytes on disk under Dir and serves them from
// /uploads/. References look like "/uploads/<name>".
type LocalStore struct {
	Dir string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	// name comes from the upload handler, which generates it; still refuse
	// anything that could escape the upload dir.
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	return publicPrefix + name, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	name := filepath.Base(strings.TrimPrefix(ref, publicPrefix))
	err := os.Remove(filepath.Join(s.Dir, name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (s *LocalStore) List(_ context.Context) ([]Object, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	var objs []Object
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		objs = append(objs, Object{Ref: publicPrefix + e.Name(), ModTime: info.ModTime()})
	}
	return objs, nil
}
