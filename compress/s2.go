package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

// S2Compressor is the S2 block codec.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Type() format.CompressionType { return format.CompressionS2 }

// Compress appends the S2 block of data to dst.
func (c S2Compressor) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	return append(dst, s2.Encode(nil, data)...), nil
}

// Decompress decodes an S2 block of known decoded size.
func (c S2Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize(format.CompressionS2, nil, size)
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrCorruptPayload, err)
	}
	if n != size {
		return checkSize(format.CompressionS2, make([]byte, n), size)
	}

	out, err := s2.Decode(make([]byte, size), data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrCorruptPayload, err)
	}

	return checkSize(format.CompressionS2, out, size)
}
