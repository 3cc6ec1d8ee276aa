// Package storage writes avatar files to local disk or to an object store.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore writes objects below a base directory on the local filesystem.
type DiskStore struct {
	base string
}

// NewDiskStore creates a DiskStore rooted at base. An empty base means the working directory.
func NewDiskStore(base string) *DiskStore {
	return &DiskStore{base: base}
}

// Save writes data at key, creating parent directories as needed.
// The file is written to a temporary name first and renamed into place.
func (s *DiskStore) Save(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(s.base, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}
