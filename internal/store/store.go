// Package store reads and writes a single text blob at a filesystem location.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrIO wraps every filesystem failure returned by a Store.
var ErrIO = errors.New("config store I/O failure")

// DefaultPath is the cache location relative to the user's home directory.
const DefaultPath = ".shortcuts/config.json"

// fileMode is applied to every written file; temp files start out 0600.
const fileMode os.FileMode = 0644

// Store owns one file. It knows nothing about what the file contains.
type Store struct {
	fs   afero.Fs
	path string
}

// New returns a Store backed by the OS filesystem.
func New(path string) *Store {
	return NewWithFs(afero.NewOsFs(), path)
}

// NewWithFs returns a Store backed by fs.
func NewWithFs(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// ResolvePath expands a relative path against the user's home directory.
// An empty path resolves to DefaultPath.
func ResolvePath(path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, path), nil
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Read returns the file content. A missing file is created empty, along with
// any missing parent directories, and reads as "".
func (s *Store) Read() (string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err == nil {
		return string(data), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("%w: reading %s: %v", ErrIO, s.path, err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return "", fmt.Errorf("%w: creating directory for %s: %v", ErrIO, s.path, err)
	}
	f, err := s.fs.Create(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrIO, s.path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: closing %s: %v", ErrIO, s.path, err)
	}
	return "", nil
}

// Write replaces the file content. The new content goes to a temp file in the
// same directory which is then renamed over the target, so a failed write
// leaves the previous content in place.
func (s *Store) Write(content string) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %v", ErrIO, dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %v", ErrIO, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", ErrIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: syncing %s: %v", ErrIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %v", ErrIO, tmpName, err)
	}
	if err := s.fs.Chmod(tmpName, fileMode); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: setting mode of %s: %v", ErrIO, tmpName, err)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %v", ErrIO, s.path, err)
	}
	return nil
}

// Delete removes the file. Deleting a missing file is not an error.
func (s *Store) Delete() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %v", ErrIO, s.path, err)
	}
	return nil
}
