package compress

import (
	"fmt"

	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

// Compressor compresses chunk payloads.
type Compressor interface {
	// Compress appends the compressed form of data to dst and returns the
	// extended slice.
	Compress(dst, data []byte) ([]byte, error)
}

// Decompressor restores chunk payloads.
type Decompressor interface {
	// Decompress decodes data whose uncompressed length is size.
	Decompress(data []byte, size int) ([]byte, error)
}

// Codec combines compression and decompression for one algorithm.
type Codec interface {
	Compressor
	Decompressor
	Type() format.CompressionType
}

// Stats summarizes the compression of a whole archive.
type Stats struct {
	Algorithm      format.CompressionType
	OriginalSize   int64
	CompressedSize int64
}

// Add accounts one chunk.
func (s *Stats) Add(original, compressed int) {
	s.OriginalSize += int64(original)
	s.CompressedSize += int64(compressed)
}

// CompressionRatio returns compressed/original, or 0 for empty input.
func (s Stats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the percentage of bytes saved.
func (s Stats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared codec for a compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression type %s", errs.ErrInvalidArgument, compressionType)
}

// checkSize verifies a decoded payload length.
func checkSize(c format.CompressionType, out []byte, size int) ([]byte, error) {
	if len(out) != size {
		return nil, fmt.Errorf("%w: %s payload decoded to %d bytes, want %d", errs.ErrCorruptPayload, c, len(out), size)
	}

	return out, nil
}
