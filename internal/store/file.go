package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// File is a Store keeping one file per key in a directory.
type File struct {
	fs  afero.Fs
	dir string
}

var _ Store = (*File)(nil)

// NewFile returns a File store rooted at dir, creating it if needed.
func NewFile(fs afero.Fs, dir string) (*File, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	return &File{fs: fs, dir: dir}, nil
}

// path escapes key so a key containing a slash stays inside dir.
func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

// Get implements Store.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	b, err := afero.ReadFile(f.fs, f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return b, nil
}

// Put implements Store. The value is written to a temporary file first and
// renamed into place.
func (f *File) Put(_ context.Context, key string, value []byte) error {
	tmp, err := afero.TempFile(f.fs, f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	_, err = tmp.Write(value)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = f.fs.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := f.fs.Rename(tmp.Name(), f.path(key)); err != nil {
		_ = f.fs.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

// Delete implements Store.
func (f *File) Delete(_ context.Context, key string) error {
	err := f.fs.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}
