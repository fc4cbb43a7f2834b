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

package index

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/jeremyhahn/go-paktools/pkg/correlation"
	"github.com/jeremyhahn/go-paktools/pkg/crypto/pakcipher"
	"github.com/jeremyhahn/go-paktools/pkg/logging"
	"github.com/jeremyhahn/go-paktools/pkg/metrics"
	"github.com/jeremyhahn/go-paktools/pkg/storage"
	"github.com/jeremyhahn/go-paktools/pkg/storage/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	knownKey        = "0x03020100070605040b0a09080f0e0d0c13121110171615141b1a19181f1e1d1c"
	knownCiphertext = "cab7a28ebf4567519049fcea8960494b"
	knownPlaintext  = "3322110077665544bbaa9988ffeeddcc"
)

func newTestDriver(t *testing.T) (*Driver, storage.Backend, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Output: &logs})
	require.NoError(t, err)
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })
	return New(store, logger), store, &logs
}

func mustKey(t *testing.T, encoded string) *pakcipher.Key {
	t.Helper()
	key, err := pakcipher.ParseKey(encoded)
	require.NoError(t, err)
	return key
}

func sizePtr(n int64) *int64 {
	return &n
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecrypt_KnownAnswer(t *testing.T) {
	d, store, _ := newTestDriver(t)
	require.NoError(t, store.Put("encrypted_index.bin", mustHex(t, knownCiphertext), nil))

	result, err := d.Decrypt(context.Background(), Request{
		Input:  "encrypted_index.bin",
		Output: "decrypted_index.bin",
		Key:    mustKey(t, knownKey),
	})
	require.NoError(t, err)

	got, err := store.Get("decrypted_index.bin")
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, knownPlaintext), got)

	assert.Equal(t, metrics.OpDecrypt, result.Operation)
	assert.Equal(t, 16, result.InputBytes)
	assert.Equal(t, 16, result.OutputBytes)
	assert.Equal(t, 1, result.Blocks)
	assert.Equal(t, mustKey(t, knownKey).Fingerprint(), result.KeyFingerprint)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := mustKey(t, knownKey)

	for _, size := range []int{1, 15, 16, 17, 100, 4096} {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			d, store, _ := newTestDriver(t)
			original := bytes.Repeat([]byte{0xA5, 0x3C, 0x01}, size)[:size]
			require.NoError(t, store.Put("plain.bin", original, nil))

			enc, err := d.Encrypt(context.Background(), Request{Input: "plain.bin", Output: "sealed.bin", Key: key})
			require.NoError(t, err)
			assert.Equal(t, size, enc.InputBytes)
			assert.Zero(t, enc.OutputBytes%pakcipher.BlockSize)
			assert.Equal(t, enc.OutputBytes/pakcipher.BlockSize, enc.Blocks)

			dec, err := d.Decrypt(context.Background(), Request{
				Input:  "sealed.bin",
				Output: "opened.bin",
				Key:    key,
				Size:   sizePtr(int64(enc.InputBytes)),
			})
			require.NoError(t, err)
			assert.Equal(t, size, dec.OutputBytes)

			got, err := store.Get("opened.bin")
			require.NoError(t, err)
			assert.Equal(t, original, got)
		})
	}
}

func TestDecrypt_DefaultSizeKeepsInputLength(t *testing.T) {
	d, store, _ := newTestDriver(t)
	key := mustKey(t, knownKey)
	sealed, err := pakcipher.Encrypt(make([]byte, 48), key)
	require.NoError(t, err)
	require.NoError(t, store.Put("in", sealed, nil))

	result, err := d.Decrypt(context.Background(), Request{Input: "in", Output: "out", Key: key})
	require.NoError(t, err)
	assert.Equal(t, 48, result.OutputBytes)
	assert.Equal(t, 3, result.Blocks)
}

func TestDecrypt_TruncateToZero(t *testing.T) {
	d, store, _ := newTestDriver(t)
	require.NoError(t, store.Put("in", mustHex(t, knownCiphertext), nil))

	result, err := d.Decrypt(context.Background(), Request{Input: "in", Output: "out", Key: mustKey(t, knownKey), Size: sizePtr(0)})
	require.NoError(t, err)
	assert.Zero(t, result.OutputBytes)

	got, err := store.Get("out")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecrypt_InvalidSize(t *testing.T) {
	d, store, _ := newTestDriver(t)
	require.NoError(t, store.Put("in", mustHex(t, knownCiphertext), nil))

	for _, size := range []int64{-1, 17} {
		_, err := d.Decrypt(context.Background(), Request{Input: "in", Output: "out", Key: mustKey(t, knownKey), Size: sizePtr(size)})
		assert.ErrorIs(t, err, ErrInvalidSize)
	}

	exists, err := store.Exists("out")
	require.NoError(t, err)
	assert.False(t, exists, "no output on failure")
}

func TestDecrypt_InvalidCiphertextLength(t *testing.T) {
	d, store, _ := newTestDriver(t)
	require.NoError(t, store.Put("in", make([]byte, 15), nil))

	metrics.Enable()
	metrics.ErrorsTotal.Reset()

	_, err := d.Decrypt(context.Background(), Request{Input: "in", Output: "out", Key: mustKey(t, knownKey)})
	assert.ErrorIs(t, err, pakcipher.ErrInvalidCiphertextLength)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues(metrics.OpDecrypt, "invalid_length")))

	exists, err := store.Exists("out")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDecrypt_MissingInput(t *testing.T) {
	d, _, _ := newTestDriver(t)

	_, err := d.Decrypt(context.Background(), Request{Input: "missing.bin", Output: "out", Key: mustKey(t, knownKey)})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDecrypt_Canceled(t *testing.T) {
	d, store, _ := newTestDriver(t)
	require.NoError(t, store.Put("in", mustHex(t, knownCiphertext), nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Decrypt(ctx, Request{Input: "in", Output: "out", Key: mustKey(t, knownKey)})
	assert.ErrorIs(t, err, context.Canceled)

	exists, err := store.Exists("out")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRequestValidation(t *testing.T) {
	d, store, _ := newTestDriver(t)
	require.NoError(t, store.Put("in", make([]byte, 16), nil))
	key := mustKey(t, knownKey)

	tests := []struct {
		name string
		req  Request
	}{
		{"missing input", Request{Output: "out", Key: key}},
		{"missing output", Request{Input: "in", Key: key}},
		{"missing key", Request{Input: "in", Output: "out"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Decrypt(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	_, err := d.Decrypt(context.Background(), Request{Input: "in", Output: "out"})
	assert.ErrorIs(t, err, pakcipher.ErrNilKey)

	_, err = d.Encrypt(context.Background(), Request{Input: "in", Output: "out", Key: key, Size: sizePtr(4)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDecrypt_LogsRunID(t *testing.T) {
	d, store, logs := newTestDriver(t)
	require.NoError(t, store.Put("in", mustHex(t, knownCiphertext), nil))

	ctx := correlation.WithRunID(context.Background(), "run-42")
	_, err := d.Decrypt(ctx, Request{Input: "in", Output: "out", Key: mustKey(t, knownKey)})
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "run_id=run-42")
	assert.Contains(t, logs.String(), "operation=decrypt")
	assert.NotContains(t, logs.String(), "0302010007060504", "key bytes are never logged")
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.Canceled, "canceled"},
		{fmt.Errorf("read: %w", storage.ErrNotFound), "not_found"},
		{pakcipher.ErrInvalidCiphertextLength, "invalid_length"},
		{ErrInvalidSize, "invalid_size"},
		{ErrInvalidRequest, "invalid_request"},
		{fmt.Errorf("disk full"), "io"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorType(tt.err))
	}
}
