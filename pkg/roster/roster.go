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

// Package roster converts hand-maintained character and skin lists into the
// JSON roster consumed by the mod installer.
//
// Two input dialects are supported. The list dialect groups skins under bold
// character headers. Every skin line carries a four character marker that is
// ignored:
//
//	**1011 - Hulk:**
//	> - 1011002 - Bruce Banner
//	> - 1011003 - Immortal Hulk
//
// The markdown dialect uses headings and block quotes:
//
//	## Hulk
//	### Bruce Banner
//	> 1011002
//
// Both produce a slice of Record in input order.
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrMalformedLine is returned when a line cannot be split into an ID
	// and a name.
	ErrMalformedLine = errors.New("roster: malformed line")

	// ErrUnknownCharacter is returned when a skin references a character
	// that has not been declared yet.
	ErrUnknownCharacter = errors.New("roster: skin references unknown character")

	// ErrUnknownFormat is returned for an unsupported input dialect.
	ErrUnknownFormat = errors.New("roster: unknown format")
)

// Format names an input dialect.
type Format string

const (
	FormatList     Format = "list"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "list", "txt", "text":
		return FormatList, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q (must be list or markdown)", ErrUnknownFormat, s)
	}
}

// Record is one character skin.
type Record struct {
	Name     string `json:"name"`
	ID       string `json:"id,omitempty"`
	SkinID   string `json:"skinid"`
	SkinName string `json:"skin_name"`
}

// LineError reports the input line a parse failure occurred on.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Parse reads r in the given dialect.
func Parse(format Format, r io.Reader) ([]Record, error) {
	switch format {
	case FormatList:
		return ParseList(r)
	case FormatMarkdown:
		return ParseMarkdown(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Encode writes records as a JSON array indented with four spaces.
func Encode(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("roster: failed to encode records: %w", err)
	}
	return nil
}

// clean strips bullet characters and surrounding whitespace and normalizes
// the result to NFC.
func clean(s string) string {
	s = strings.ReplaceAll(s, "•", "")
	return norm.NFC.String(strings.TrimSpace(s))
}
