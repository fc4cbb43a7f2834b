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
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	headerPrefix = "**"
	headerSuffix = ":**"
	fieldSep     = " - "

	// skinMarkerWidth is the number of leading characters (the bullet and
	// its padding) dropped from every skin line.
	skinMarkerWidth = 4

	// characterIDWidth is the length of the character prefix of a skin ID.
	characterIDWidth = 4

	defaultSkinSuffix = "001"
	defaultSkinName   = "Default"
)

// ParseList reads the list dialect. Each character header emits a default
// skin record followed by one record per skin line beneath it.
func ParseList(r io.Reader) ([]Record, error) {
	characters := make(map[string]string)
	records := make([]Record, 0)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, headerPrefix) {
			id, name, err := parseHeader(line)
			if err != nil {
				return nil, &LineError{Line: lineNo, Text: line, Err: err}
			}
			characters[id] = name
			records = append(records, Record{
				Name:     name,
				ID:       id,
				SkinID:   id + defaultSkinSuffix,
				SkinName: defaultSkinName,
			})
			continue
		}

		line = dropRunes(line, skinMarkerWidth)
		if line == "" {
			continue
		}

		skinID, skinName, ok := splitFields(line)
		if !ok {
			return nil, &LineError{Line: lineNo, Text: line, Err: ErrMalformedLine}
		}
		charID := characterID(skinID)
		name, ok := characters[charID]
		if !ok {
			return nil, &LineError{Line: lineNo, Text: line, Err: fmt.Errorf("%w %q", ErrUnknownCharacter, charID)}
		}
		records = append(records, Record{
			Name:     name,
			ID:       charID,
			SkinID:   skinID,
			SkinName: skinName,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("roster: failed to read input: %w", err)
	}
	return records, nil
}

func parseHeader(line string) (id, name string, err error) {
	line = strings.TrimPrefix(line, headerPrefix)
	line = strings.TrimSuffix(line, headerSuffix)
	id, name, ok := splitFields(strings.TrimSpace(line))
	if !ok {
		return "", "", ErrMalformedLine
	}
	return id, name, nil
}

// splitFields splits "ID - Name" at the first separator. Both halves must be
// non-empty.
func splitFields(s string) (id, name string, ok bool) {
	id, name, found := strings.Cut(s, fieldSep)
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if !found || id == "" || name == "" {
		return "", "", false
	}
	return id, name, true
}

func characterID(skinID string) string {
	if len(skinID) < characterIDWidth {
		return skinID
	}
	return skinID[:characterIDWidth]
}

// dropRunes removes the first n runes of s and trims what is left.
func dropRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return strings.TrimSpace(s[i:])
		}
		n--
	}
	return ""
}
