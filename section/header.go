package section

import (
	"fmt"
	"math"

	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

// ArchiveHeader represents the fixed-size header section at the start of an
// archive.
type ArchiveHeader struct {
	// Flag is a packed field for the magic number, options, dtype and codec.
	Flag ArchiveFlag // byte offset 0-3
	// NumChannels is the number of channels of every frame.
	NumChannels uint32 // byte offset 4-7
	// SamplingFrequency is the sampling rate in Hz.
	SamplingFrequency float64 // byte offset 8-15
	// NumSegments is the number of entries in the segment table.
	NumSegments uint32 // byte offset 16-19
	// ChunkSize is the number of samples of every chunk but the last of a segment.
	ChunkSize uint32 // byte offset 20-23
	// ChunkCount is the number of entries in the chunk index.
	ChunkCount uint32 // byte offset 24-27
	// ChannelTableSize is the byte length of the channel table.
	ChannelTableSize uint32 // byte offset 28-31
	// ChannelTableOffset is the byte offset of the channel table.
	ChannelTableOffset uint64 // byte offset 32-39
	// SegmentTableOffset is the byte offset of the segment table.
	SegmentTableOffset uint64 // byte offset 40-47
	// PayloadOffset is the byte offset of the first chunk payload.
	PayloadOffset uint64 // byte offset 48-55
	// IndexOffset is the byte offset of the chunk index, after the payloads.
	IndexOffset uint64 // byte offset 56-63
}

// NewArchiveHeader creates a header for the given recording shape. Section
// offsets are filled in by the writer.
func NewArchiveHeader(dtype format.DType, compression format.CompressionType, numChannels int, samplingFrequency float64) *ArchiveHeader {
	return &ArchiveHeader{
		Flag:               NewArchiveFlag(dtype, compression),
		NumChannels:        uint32(numChannels), //nolint: gosec
		SamplingFrequency:  samplingFrequency,
		ChannelTableOffset: ChannelTableOffset,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 64 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 64 bytes, or flag and layout validation errors
func (h *ArchiveHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// Options itself is always little-endian; it carries the byte order of the rest.
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.DType = data[2]
	h.Flag.CompressionType = data[3]
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()

	h.NumChannels = engine.Uint32(data[4:8])
	h.SamplingFrequency = math.Float64frombits(engine.Uint64(data[8:16]))
	h.NumSegments = engine.Uint32(data[16:20])
	h.ChunkSize = engine.Uint32(data[20:24])
	h.ChunkCount = engine.Uint32(data[24:28])
	h.ChannelTableSize = engine.Uint32(data[28:32])
	h.ChannelTableOffset = engine.Uint64(data[32:40])
	h.SegmentTableOffset = engine.Uint64(data[40:48])
	h.PayloadOffset = engine.Uint64(data[48:56])
	h.IndexOffset = engine.Uint64(data[56:64])

	return h.Validate()
}

// Validate checks the shape and the ordering of the section offsets.
func (h *ArchiveHeader) Validate() error {
	if h.NumChannels == 0 {
		return fmt.Errorf("%w: zero channels", errs.ErrInvalidHeader)
	}
	if !(h.SamplingFrequency > 0) || math.IsInf(h.SamplingFrequency, 0) {
		return fmt.Errorf("%w: sampling frequency %g", errs.ErrInvalidHeader, h.SamplingFrequency)
	}
	if h.ChunkSize == 0 {
		return fmt.Errorf("%w: zero chunk size", errs.ErrInvalidHeader)
	}
	if h.ChannelTableOffset != ChannelTableOffset ||
		h.SegmentTableOffset != h.ChannelTableOffset+uint64(h.ChannelTableSize) ||
		h.PayloadOffset != h.SegmentTableOffset+uint64(h.NumSegments)*SegmentEntrySize ||
		h.IndexOffset < h.PayloadOffset {
		return fmt.Errorf("%w: inconsistent section offsets", errs.ErrInvalidHeader)
	}

	return nil
}

// Bytes serializes the ArchiveHeader into a byte slice.
func (h *ArchiveHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := h.Flag.GetEndianEngine()

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.DType
	b[3] = h.Flag.CompressionType
	engine.PutUint32(b[4:8], h.NumChannels)
	engine.PutUint64(b[8:16], math.Float64bits(h.SamplingFrequency))
	engine.PutUint32(b[16:20], h.NumSegments)
	engine.PutUint32(b[20:24], h.ChunkSize)
	engine.PutUint32(b[24:28], h.ChunkCount)
	engine.PutUint32(b[28:32], h.ChannelTableSize)
	engine.PutUint64(b[32:40], h.ChannelTableOffset)
	engine.PutUint64(b[40:48], h.SegmentTableOffset)
	engine.PutUint64(b[48:56], h.PayloadOffset)
	engine.PutUint64(b[56:64], h.IndexOffset)

	return b
}

// ParseArchiveHeader parses an ArchiveHeader from the start of a byte slice.
func ParseArchiveHeader(data []byte) (ArchiveHeader, error) {
	if len(data) < HeaderSize {
		return ArchiveHeader{}, errs.ErrInvalidHeaderSize
	}

	h := ArchiveHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return ArchiveHeader{}, err
	}

	return h, nil
}
