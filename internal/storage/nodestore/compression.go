// Package nodestore persists ledger entries through an LRU cache and
// optional compression on top of a keyValueDb backend.
package nodestore

import (
	"fmt"

	"github.com/pierrec/lz4"
)

// Compressor converts payloads to and from their stored form.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, originalSize int) ([]byte, error)
}

// NoCompressor is a pass-through compressor.
type NoCompressor struct{}

func (NoCompressor) Name() string { return "none" }

func (NoCompressor) Compress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

func (NoCompressor) Decompress(data []byte, originalSize int) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

// LZ4Compressor compresses payloads as raw LZ4 blocks.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return "lz4" }

func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// Incompressible input; the caller stores it raw.
		return nil, nil
	}
	return compressed[:n], nil
}

func (LZ4Compressor) Decompress(data []byte, originalSize int) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	decompressed := make([]byte, originalSize)
	n, err := lz4.UncompressBlock(data, decompressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	return decompressed[:n], nil
}
