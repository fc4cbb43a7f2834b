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

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-paktools/pkg/crypto/swizzle"
)

// hexPrefix marks a key literal as hexadecimal. Anything else is base64.
const hexPrefix = "0x"

// Key is swizzled AES key material ready to be handed to the block cipher.
// It is immutable once constructed and safe for concurrent use.
type Key struct {
	material []byte
}

// ParseKey decodes a key literal and applies the word swizzle.
//
// A literal starting with "0x" is decoded as hexadecimal. Any other literal
// has its trailing '=' padding stripped and is decoded as standard base64.
// Decode failures are reported as ErrInvalidKeyEncoding and keys AES cannot
// use as ErrInvalidKeySize.
func ParseKey(encoded string) (*Key, error) {
	raw, err := DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	if !validKeySize(len(raw)) {
		return nil, fmt.Errorf("%w: %d bytes (must be 16, 24 or 32)", ErrInvalidKeySize, len(raw))
	}
	swizzle.InPlace(raw)
	return &Key{material: raw}, nil
}

// DecodeKey returns the bytes a key literal encodes, before swizzling.
func DecodeKey(encoded string) ([]byte, error) {
	if strings.HasPrefix(encoded, hexPrefix) {
		raw, err := hex.DecodeString(encoded[len(hexPrefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: hex: %v", ErrInvalidKeyEncoding, err)
		}
		return raw, nil
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrInvalidKeyEncoding, err)
	}
	return raw, nil
}

// NewKey wraps already swizzled key material. The slice is copied.
func NewKey(material []byte) (*Key, error) {
	if !validKeySize(len(material)) {
		return nil, fmt.Errorf("%w: %d bytes (must be 16, 24 or 32)", ErrInvalidKeySize, len(material))
	}
	k := make([]byte, len(material))
	copy(k, material)
	return &Key{material: k}, nil
}

// Bytes returns a copy of the swizzled key material.
func (k *Key) Bytes() []byte {
	out := make([]byte, len(k.material))
	copy(out, k.material)
	return out
}

// Size returns the key length in bytes.
func (k *Key) Size() int {
	return len(k.material)
}

// Bits returns the key length in bits.
func (k *Key) Bits() int {
	return len(k.material) * 8
}

// Fingerprint returns a short, stable identifier for the key that is safe to
// log. It is the first 8 bytes of the SHA-256 of the swizzled material.
func (k *Key) Fingerprint() string {
	sum := sha256.Sum256(k.material)
	return hex.EncodeToString(sum[:8])
}

// String implements fmt.Stringer without revealing key material.
func (k *Key) String() string {
	return fmt.Sprintf("AES-%d(%s)", k.Bits(), k.Fingerprint())
}

func validKeySize(n int) bool {
	switch n {
	case 16, 24, 32:
		return true
	default:
		return false
	}
}
