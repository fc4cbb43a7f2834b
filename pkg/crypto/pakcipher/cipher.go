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

// Package pakcipher implements the engine's pak index cipher: AES in ECB mode
// where the key and every 16-byte block are word swizzled around the standard
// block operation.
//
// Decryption of one block is
//
//	swizzle(AES-Decrypt(key', swizzle(block)))
//
// where key' is the swizzled key produced by ParseKey. Encryption is the same
// pipeline with the forward block operation.
package pakcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/jeremyhahn/go-paktools/pkg/crypto/swizzle"
)

// BlockSize is the AES block size in bytes.
const BlockSize = aes.BlockSize

// Cipher is an expanded pak cipher. It holds no mutable state and may be
// used from multiple goroutines.
type Cipher struct {
	block cipher.Block
	key   *Key
}

// New expands key into a Cipher.
func New(key *Key) (*Cipher, error) {
	if key == nil {
		return nil, ErrNilKey
	}
	block, err := aes.NewCipher(key.material)
	if err != nil {
		return nil, fmt.Errorf("pakcipher: failed to create cipher: %w", err)
	}
	return &Cipher{block: block, key: key}, nil
}

// Key returns the key the cipher was built from.
func (c *Cipher) Key() *Key {
	return c.key
}

// Decrypt decrypts ciphertext, which must be a whole number of blocks.
// The returned plaintext has the same length as ciphertext.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidCiphertextLength, len(ciphertext))
	}
	out := make([]byte, len(ciphertext))
	c.crypt(out, ciphertext, c.block.Decrypt)
	return out, nil
}

// Encrypt is the inverse of Decrypt. plaintext must be a whole number of
// blocks.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	if len(plaintext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPlaintextLength, len(plaintext))
	}
	out := make([]byte, len(plaintext))
	c.crypt(out, plaintext, c.block.Encrypt)
	return out, nil
}

// crypt runs op over src one block at a time, swizzling each block before
// and after. dst and src must have the same length.
func (c *Cipher) crypt(dst, src []byte, op func(dst, src []byte)) {
	var buf [BlockSize]byte
	for i := 0; i < len(src); i += BlockSize {
		copy(buf[:], src[i:i+BlockSize])
		swizzle.InPlace(buf[:])
		op(dst[i:i+BlockSize], buf[:])
		swizzle.InPlace(dst[i : i+BlockSize])
	}
}

// Decrypt decrypts ciphertext with key. See Cipher.Decrypt.
func Decrypt(ciphertext []byte, key *Key) ([]byte, error) {
	// Length is validated before the key.
	if len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidCiphertextLength, len(ciphertext))
	}
	c, err := New(key)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext)
}

// Encrypt encrypts plaintext with key. See Cipher.Encrypt.
func Encrypt(plaintext []byte, key *Key) ([]byte, error) {
	c, err := New(key)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(plaintext)
}

// Pad returns data zero-padded to the next block boundary. Data that is
// already block aligned is returned as a copy with no padding added.
func Pad(data []byte) []byte {
	n := len(data)
	if rem := n % BlockSize; rem != 0 {
		n += BlockSize - rem
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}
