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

// Package index reads, decrypts or encrypts, and writes pak index files.
package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-paktools/pkg/correlation"
	"github.com/jeremyhahn/go-paktools/pkg/crypto/pakcipher"
	"github.com/jeremyhahn/go-paktools/pkg/logging"
	"github.com/jeremyhahn/go-paktools/pkg/metrics"
	"github.com/jeremyhahn/go-paktools/pkg/storage"
	"github.com/jeremyhahn/go-paktools/pkg/validation"
)

var (
	// ErrInvalidSize is returned when the requested plaintext size is
	// negative or larger than the decrypted payload.
	ErrInvalidSize = errors.New("index: invalid size")

	// ErrInvalidRequest is returned when a request is missing a path or key.
	ErrInvalidRequest = errors.New("index: invalid request")
)

// Request describes one index file operation.
type Request struct {
	Input  string
	Output string
	Key    *pakcipher.Key

	// Size truncates decrypted output. Nil keeps the full decrypted length,
	// which equals the input length. Zero yields an empty output.
	Size *int64
}

// Result reports what an operation read and wrote.
type Result struct {
	Operation      string  `json:"operation"`
	Input          string  `json:"input"`
	Output         string  `json:"output"`
	InputBytes     int     `json:"input_bytes"`
	OutputBytes    int     `json:"output_bytes"`
	Blocks         int     `json:"blocks"`
	KeyFingerprint string  `json:"key_fingerprint"`
	DurationMs     float64 `json:"duration_ms"`
}

// Driver runs index operations against a storage backend.
type Driver struct {
	store  storage.Backend
	logger *logging.Logger
	opts   *storage.Options
}

// New creates a driver. A nil logger is replaced by the default logger.
func New(store storage.Backend, logger *logging.Logger) *Driver {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Driver{
		store:  store,
		logger: logger,
		opts:   storage.DefaultOptions(),
	}
}

// Decrypt reads req.Input, decrypts it with req.Key, truncates it to
// req.Size and writes req.Output. Nothing is written on failure.
func (d *Driver) Decrypt(ctx context.Context, req Request) (*Result, error) {
	return d.run(ctx, metrics.OpDecrypt, req, func(c *pakcipher.Cipher, data []byte) ([]byte, error) {
		plaintext, err := c.Decrypt(data)
		if err != nil {
			return nil, err
		}
		size := int64(len(plaintext))
		if req.Size != nil {
			if *req.Size < 0 || *req.Size > size {
				return nil, fmt.Errorf("%w: %d (decrypted payload is %d bytes)", ErrInvalidSize, *req.Size, size)
			}
			size = *req.Size
		}
		return plaintext[:size], nil
	})
}

// Encrypt reads req.Input, zero-pads it to the block size, encrypts it with
// req.Key and writes req.Output. The original length is reported in the
// result so it can be passed back as the decrypt size.
func (d *Driver) Encrypt(ctx context.Context, req Request) (*Result, error) {
	if req.Size != nil {
		return nil, fmt.Errorf("%w: size is only valid for decrypt", ErrInvalidRequest)
	}
	return d.run(ctx, metrics.OpEncrypt, req, func(c *pakcipher.Cipher, data []byte) ([]byte, error) {
		return c.Encrypt(pakcipher.Pad(data))
	})
}

type transform func(c *pakcipher.Cipher, data []byte) ([]byte, error)

func (d *Driver) run(ctx context.Context, op string, req Request, fn transform) (*Result, error) {
	start := time.Now()
	ctx, _ = correlation.Ensure(ctx)
	logger := d.logger.With(correlation.Attr(ctx), "operation", op)

	result, err := d.execute(ctx, op, req, fn, logger)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordOperation(op, metrics.StatusError, elapsed.Seconds())
		metrics.RecordError(op, errorType(err))
		logger.Error(err, "input", validation.SanitizeForLog(req.Input))
		return nil, err
	}

	result.DurationMs = float64(elapsed.Microseconds()) / 1000
	metrics.RecordOperation(op, metrics.StatusSuccess, elapsed.Seconds())
	metrics.RecordBytes(op, result.InputBytes, result.OutputBytes)
	metrics.RecordBlocks(op, result.Blocks)
	logger.Info("index written",
		"input", validation.SanitizeForLog(result.Input),
		"output", validation.SanitizeForLog(result.Output),
		"bytes", result.OutputBytes,
		"key", result.KeyFingerprint)
	return result, nil
}

func (d *Driver) execute(ctx context.Context, op string, req Request, fn transform, logger *logging.Logger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, path := range []string{req.Input, req.Output} {
		if err := validation.ValidatePath(path); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	if req.Key == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, pakcipher.ErrNilKey)
	}

	c, err := pakcipher.New(req.Key)
	if err != nil {
		return nil, err
	}

	data, err := d.store.Get(req.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.Input, err)
	}
	logger.Debugf("read %d bytes from %s", len(data), req.Input)

	out, err := fn(c, data)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, req.Input, err)
	}

	if err := d.store.Put(req.Output, out, d.opts); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", req.Output, err)
	}

	blocks := len(data) / pakcipher.BlockSize
	if op == metrics.OpEncrypt {
		blocks = len(out) / pakcipher.BlockSize
	}

	return &Result{
		Operation:      op,
		Input:          req.Input,
		Output:         req.Output,
		InputBytes:     len(data),
		OutputBytes:    len(out),
		Blocks:         blocks,
		KeyFingerprint: req.Key.Fingerprint(),
	}, nil
}

// errorType maps an error to the metrics error_type label.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, pakcipher.ErrInvalidCiphertextLength):
		return "invalid_length"
	case errors.Is(err, ErrInvalidSize):
		return "invalid_size"
	case errors.Is(err, pakcipher.ErrNilKey), errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "io"
	}
}
