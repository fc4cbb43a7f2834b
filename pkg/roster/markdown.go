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

package roster

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	characterHeadingLevel = 2
	skinHeadingLevel      = 3

	characterPrefix = "## "
	skinPrefix      = "### "
	quotePrefix     = "> "
)

// ParseMarkdown reads the markdown dialect. A level two heading names the
// character, a level three heading names the skin and every "> " line is a
// skin ID. Records are only emitted once both names are known.
//
// Every line is cleaned before it is classified, so indentation and bullets
// in front of a marker are ignored. Headings must be ATX headings on a line
// of their own. Skin IDs come from quote lines only; text that markdown
// would fold into a quote as a lazy continuation is not a skin ID.
func ParseMarkdown(r io.Reader) ([]Record, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("roster: failed to read input: %w", err)
	}

	lines := strings.Split(string(src), "\n")
	offsets := make([]int, len(lines))
	var cleaned bytes.Buffer
	for i, line := range lines {
		lines[i] = clean(line)
		offsets[i] = cleaned.Len()
		cleaned.WriteString(lines[i])
		cleaned.WriteByte('\n')
	}

	headings, err := findHeadings(cleaned.Bytes(), lines, offsets)
	if err != nil {
		return nil, err
	}

	var character, skinName string
	records := make([]Record, 0)
	for i, line := range lines {
		if h, ok := headings[i]; ok {
			switch h.level {
			case characterHeadingLevel:
				character = h.text
			case skinHeadingLevel:
				skinName = h.text
			}
			continue
		}

		rest, ok := strings.CutPrefix(line, quotePrefix)
		if !ok {
			continue
		}
		skinID := clean(rest)
		if character == "" || skinName == "" || skinID == "" {
			continue
		}
		records = append(records, Record{
			Name:     character,
			SkinID:   skinID,
			SkinName: skinName,
		})
	}
	return records, nil
}

type heading struct {
	level int
	text  string
}

// findHeadings returns the character and skin headings of src keyed by the
// index of the line they start on.
func findHeadings(src []byte, lines []string, offsets []int) (map[int]heading, error) {
	headings := make(map[int]heading)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		node, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if node.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		line := sort.SearchInts(offsets, node.Lines().At(0).Start+1) - 1
		var prefix string
		switch node.Level {
		case characterHeadingLevel:
			prefix = characterPrefix
		case skinHeadingLevel:
			prefix = skinPrefix
		default:
			return ast.WalkSkipChildren, nil
		}
		// Setext headings start on a plain text line.
		if line < 0 || !strings.HasPrefix(lines[line], prefix) {
			return ast.WalkSkipChildren, nil
		}

		headings[line] = heading{level: node.Level, text: clean(joinLines(node, src))}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("roster: failed to walk markdown: %w", err)
	}
	return headings, nil
}

func joinLines(n ast.Node, src []byte) string {
	lines := n.Lines()
	var out []byte
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, seg.Value(src)...)
	}
	return string(out)
}
