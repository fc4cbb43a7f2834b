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

// Package validation checks user-supplied names and paths before they reach
// the key table, the file backend or the logs.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// keyVersionPattern matches safe key version labels
var keyVersionPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

// ValidateKeyVersion validates a key version label from the configuration
// or the command line.
func ValidateKeyVersion(version string) error {
	if version == "" {
		return fmt.Errorf("key version cannot be empty")
	}

	// Check length before the pattern (prevent ReDoS)
	if len(version) > 64 {
		return fmt.Errorf("key version too long (max 64 characters)")
	}

	if !keyVersionPattern.MatchString(version) {
		return fmt.Errorf("key version %q contains invalid characters (allowed: a-z, A-Z, 0-9, -, _, .)", SanitizeForLog(version))
	}

	return nil
}

// ValidatePath rejects file paths that cannot name a regular file: empty
// paths, null bytes and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// Check for null bytes (can bypass some path checks)
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null byte")
	}

	if len(path) > 4096 {
		return fmt.Errorf("path too long (max 4096 characters)")
	}

	for _, r := range path {
		if r < 32 || r == 127 {
			return fmt.Errorf("path %q contains control characters", SanitizeForLog(path))
		}
	}

	return nil
}

// SanitizeForLog sanitizes a string for safe logging (prevents log injection).
func SanitizeForLog(s string) string {
	// Remove control characters and null bytes
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	// Limit length to prevent log flooding
	if len(s) > 1000 {
		s = s[:1000] + "...[truncated]"
	}

	return s
}
