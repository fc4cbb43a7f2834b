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

// Package storage provides the file access layer used by the pak tools.
// Backends read whole files and replace them atomically, so a failed run
// never leaves a half-written output behind.
package storage

import (
	"io/fs"
)

// Backend defines the interface for storage backends.
// All implementations must be thread-safe.
type Backend interface {
	// Get reads the file at path.
	// Returns ErrNotFound if the file does not exist.
	Get(path string) ([]byte, error)

	// Put replaces the file at path with value, creating parent directories
	// as needed.
	Put(path string, value []byte, opts *Options) error

	// Exists checks if a file exists at path.
	Exists(path string) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Options contains optional parameters for storage operations.
type Options struct {
	// Permissions sets the mode of written files
	Permissions fs.FileMode

	// DirPermissions sets the mode of created parent directories
	DirPermissions fs.FileMode
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Permissions:    0644,
		DirPermissions: 0755,
	}
}
