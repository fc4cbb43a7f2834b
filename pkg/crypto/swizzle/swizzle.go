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

// Package swizzle implements the 4-byte word byte reversal used by the
// engine's pak tooling. The engine's encryptor treats keys and blocks as
// arrays of little-endian 32-bit words, so every buffer handed to a standard
// AES implementation has to be swizzled on the way in and on the way out.
//
// The transform is its own inverse: InPlace(InPlace(b)) restores b.
package swizzle

// WordSize is the width of a swizzle window in bytes.
const WordSize = 4

// InPlace reverses the byte order of every complete 4-byte window of buf.
// Trailing bytes that do not fill a window are left untouched.
func InPlace(buf []byte) {
	n := len(buf) - len(buf)%WordSize
	for i := 0; i < n; i += WordSize {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = buf[i+3], buf[i+2], buf[i+1], buf[i]
	}
}

// Words returns a swizzled copy of buf. The input is not modified.
func Words(buf []byte) []byte {
	if buf == nil {
		return nil
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	InPlace(out)
	return out
}
