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

// Package memory provides an in-memory storage.Backend for tests and dry
// runs.
package memory

import (
	"github.com/jeremyhahn/go-paktools/pkg/storage"
	"github.com/jeremyhahn/go-paktools/pkg/storage/file"
	"github.com/spf13/afero"
)

// New returns a storage.Backend that keeps every file in memory.
func New() storage.Backend {
	return file.NewWithFs(afero.NewMemMapFs())
}
