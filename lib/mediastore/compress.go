// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package mediastore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how an object is stored. The values are
// persisted in the media table.
type Compression uint8

const (
	// CompressionNone stores bytes as uploaded. Used for image formats
	// that are already compressed.
	CompressionNone Compression = 0

	// CompressionLZ4 is LZ4 block compression, for content that
	// compresses modestly.
	CompressionLZ4 Compression = 1

	// CompressionZstd is zstd at the default level, for text-like
	// content.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("mediastore: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("mediastore: zstd decoder initialization failed: " + err.Error())
	}
}

// errIncompressible is returned when compressed output would not be
// smaller than the input.
var errIncompressible = errors.New("data is incompressible")

// SelectCompression picks the algorithm for an object. Known image
// formats skip compression, text-like types use zstd, and everything
// else is probed with zstd: a ratio of at least 1.5 selects zstd, at
// least 1.1 selects LZ4, and anything lower is stored uncompressed.
func SelectCompression(data []byte, contentType string) Compression {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	switch contentType {
	case "image/png", "image/jpeg", "image/gif", "image/webp", "image/avif":
		return CompressionNone
	case "image/svg+xml", "text/plain", "text/markdown", "application/json":
		return CompressionZstd
	}

	if len(data) == 0 {
		return CompressionNone
	}
	compressed := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(compressed))
	switch {
	case ratio >= 1.5:
		return CompressionZstd
	case ratio >= 1.1:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Compress compresses data with the algorithm selected for its content
// type, falling back to CompressionNone when the result would not be
// smaller.
func Compress(data []byte, contentType string) ([]byte, Compression, error) {
	compression := SelectCompression(data, contentType)

	var (
		compressed []byte
		err        error
	)
	switch compression {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZstd:
		compressed, err = compressZstd(data)
	}
	if errors.Is(err, errIncompressible) {
		return data, CompressionNone, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return compressed, compression, nil
}

// Decompress reverses Compress. size must equal the original length.
func Decompress(stored []byte, compression Compression, size int) ([]byte, error) {
	switch compression {
	case CompressionNone:
		if len(stored) != size {
			return nil, fmt.Errorf("mediastore: stored size %d does not match expected %d", len(stored), size)
		}
		return stored, nil
	case CompressionLZ4:
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(stored, destination)
		if err != nil {
			return nil, fmt.Errorf("mediastore: lz4 decompress: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("mediastore: lz4 decompress: got %d bytes, expected %d", read, size)
		}
		return destination, nil
	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(stored, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("mediastore: zstd decompress: %w", err)
		}
		if len(result) != size {
			return nil, fmt.Errorf("mediastore: zstd decompress: got %d bytes, expected %d", len(result), size)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("mediastore: unsupported compression %s", compression)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("mediastore: lz4 compress: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}
