//go:build gozstd && cgo

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"

	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

// Compress appends the zstd frame of data to dst using libzstd.
func (c ZstdCompressor) Compress(dst, data []byte) ([]byte, error) {
	return gozstd.CompressLevel(dst, data, 3), nil
}

// Decompress decodes a zstd frame of known decoded size using libzstd.
func (c ZstdCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize(format.CompressionZstd, nil, size)
	}

	out, err := gozstd.Decompress(make([]byte, 0, size), data)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", errs.ErrCorruptPayload, err)
	}

	return checkSize(format.CompressionZstd, out, size)
}
