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

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", Output: &buf})
	require.NoError(t, err)

	l.Info("decrypted index", "bytes", 32)
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "msg=\"decrypted index\"")
	assert.Contains(t, out, "bytes=32")
	assert.NotContains(t, out, "hidden")
}

func TestNew_JSONFormatWith(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	l.With("run_id", "abc").Debugf("blocks=%d", 4)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "blocks=4", rec["msg"])
	assert.Equal(t, "abc", rec["run_id"])
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLogger_ErrorAndMaybeError(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Output: &buf})
	require.NoError(t, err)

	l.MaybeError(nil)
	assert.Empty(t, buf.String())

	l.Error(errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "boom")
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, NewLogger(true))
	assert.NotNil(t, DefaultLogger())
}
