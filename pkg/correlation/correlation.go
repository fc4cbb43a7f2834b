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

// Package correlation attaches a run ID to every paktool invocation so log
// lines and metrics from one run can be tied together.
package correlation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey struct{}

// LogKey is the attribute name used for run IDs in log records.
const LogKey = "run_id"

// WithRunID returns a copy of ctx carrying id.
func WithRunID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// RunID returns the run ID carried by ctx, or "" if there is none.
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// NewID generates a new UUID v4 run ID.
func NewID() string {
	return uuid.New().String()
}

// Ensure returns ctx and its run ID, attaching a new one first if ctx does
// not carry one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := RunID(ctx); id != "" {
		return ctx, id
	}
	id := NewID()
	return WithRunID(ctx, id), id
}

// Attr returns the run ID of ctx as a log attribute.
func Attr(ctx context.Context) slog.Attr {
	return slog.String(LogKey, RunID(ctx))
}
