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

package pakcipher

import "errors"

var (
	// ErrInvalidKeyEncoding is returned when a key literal is neither valid
	// 0x-prefixed hex nor valid base64.
	ErrInvalidKeyEncoding = errors.New("pakcipher: invalid key encoding")

	// ErrInvalidKeySize is returned when a decoded key is not 16, 24 or 32 bytes.
	ErrInvalidKeySize = errors.New("pakcipher: invalid key size")

	// ErrInvalidCiphertextLength is returned when the input to Decrypt is not a
	// whole number of AES blocks. No partial output is produced.
	ErrInvalidCiphertextLength = errors.New("pakcipher: ciphertext length is not a multiple of the block size")

	// ErrInvalidPlaintextLength is returned when the input to Encrypt is not a
	// whole number of AES blocks. Use Pad first.
	ErrInvalidPlaintextLength = errors.New("pakcipher: plaintext length is not a multiple of the block size")

	// ErrNilKey is returned when a nil key is supplied.
	ErrNilKey = errors.New("pakcipher: key is nil")
)
