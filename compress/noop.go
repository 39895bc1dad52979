package compress

import (
	"github.com/arloliu/ephys/format"
)

// NoOpCompressor stores payloads uncompressed.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Type() format.CompressionType { return format.CompressionNone }

// Compress appends data to dst unchanged.
func (c NoOpCompressor) Compress(dst, data []byte) ([]byte, error) {
	return append(dst, data...), nil
}

// Decompress returns data itself after checking its length; the result
// aliases the input.
func (c NoOpCompressor) Decompress(data []byte, size int) ([]byte, error) {
	return checkSize(format.CompressionNone, data, size)
}
