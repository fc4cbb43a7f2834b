// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-paktools.
//
// go-paktools is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package file provides an afero backed implementation of the
// storage.Backend interface. Writes go to a temporary file in the target
// directory which is then renamed over the destination.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeremyhahn/go-paktools/pkg/storage"
	"github.com/spf13/afero"
)

// FileStorage is an afero backed storage.Backend. It is thread-safe.
type FileStorage struct {
	mu     sync.RWMutex
	fs     afero.Fs
	closed bool
}

// New returns a backend on the operating system file system.
func New() storage.Backend {
	return NewWithFs(afero.NewOsFs())
}

// NewWithFs returns a backend on the given afero file system.
func NewWithFs(fsys afero.Fs) *FileStorage {
	return &FileStorage{fs: fsys}
}

// Fs returns the underlying file system.
func (f *FileStorage) Fs() afero.Fs {
	return f.fs
}

// Get reads the file at path.
// Returns storage.ErrNotFound if the file does not exist.
func (f *FileStorage) Get(path string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, storage.ErrClosed
	}
	if path == "" {
		return nil, storage.ErrInvalidPath
	}

	// #nosec G304 - path is provided by the user
	data, err := afero.ReadFile(f.fs, filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
		}
		return nil, fmt.Errorf("file storage: failed to read %q: %w", path, err)
	}
	return data, nil
}

// Put atomically replaces the file at path with value.
func (f *FileStorage) Put(path string, value []byte, opts *storage.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storage.ErrClosed
	}
	if path == "" {
		return storage.ErrInvalidPath
	}
	if opts == nil {
		opts = storage.DefaultOptions()
	}

	path = filepath.Clean(path)
	if info, err := f.fs.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", storage.ErrInvalidPath, path)
	}

	dir := filepath.Dir(path)
	if err := f.fs.MkdirAll(dir, dirPermissions(opts)); err != nil {
		return fmt.Errorf("file storage: failed to create directory for %q: %w", path, err)
	}

	tmp, err := afero.TempFile(f.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("file storage: failed to create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("file storage: failed to write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("file storage: failed to close %q: %w", path, err)
	}
	if err := f.fs.Chmod(tmpName, filePermissions(opts)); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("file storage: failed to set permissions on %q: %w", path, err)
	}
	if err := f.fs.Rename(tmpName, path); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("file storage: failed to replace %q: %w", path, err)
	}
	return nil
}

// Exists checks if a file exists at path.
func (f *FileStorage) Exists(path string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false, storage.ErrClosed
	}

	_, err := f.fs.Stat(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("file storage: failed to check %q: %w", path, err)
	}
	return true, nil
}

// Close marks the backend closed. Subsequent calls return storage.ErrClosed.
func (f *FileStorage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func filePermissions(opts *storage.Options) fs.FileMode {
	if opts.Permissions != 0 {
		return opts.Permissions
	}
	return storage.DefaultOptions().Permissions
}

func dirPermissions(opts *storage.Options) fs.FileMode {
	if opts.DirPermissions != 0 {
		return opts.DirPermissions
	}
	return storage.DefaultOptions().DirPermissions
}
