package section

import (
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

// ArchiveFlag is the packed flag field at the start of the archive header.
type ArchiveFlag struct {
	// Options is a packed field for various options.
	// Bit 0 marks that the channel table carries gains and offsets.
	// Bit 1 is endianness flag, 0 means little-endian, 1 means big-endian.
	// Bit 2-3 are reserved for future use, must be set to 0.
	// Bit 4-15 are the magic number, 0xEC10 for archive format v1.
	Options uint16

	// DType is the sample dtype of every chunk.
	DType uint8
	// CompressionType is the codec applied to every chunk payload.
	CompressionType uint8
}

var validCompressions = map[uint8]struct{}{
	uint8(format.CompressionNone): {},
	uint8(format.CompressionZstd): {},
	uint8(format.CompressionS2):   {},
	uint8(format.CompressionLZ4):  {},
}

// NewArchiveFlag creates a little-endian flag for the given dtype and codec.
func NewArchiveFlag(dtype format.DType, compression format.CompressionType) ArchiveFlag {
	flag := ArchiveFlag{
		Options:         MagicArchiveV1Opt,
		DType:           uint8(dtype),
		CompressionType: uint8(compression),
	}
	flag.WithLittleEndian()

	return flag
}

// HasGains returns whether the channel table carries gains and offsets.
func (f ArchiveFlag) HasGains() bool {
	return (f.Options & GainsMask) != 0
}

// SetHasGains enables or disables the gains in the channel table.
func (f *ArchiveFlag) SetHasGains(enabled bool) {
	if enabled {
		f.Options |= GainsMask
	} else {
		f.Options &^= GainsMask
	}
}

// IsLittleEndian returns whether the data is little-endian.
func (f ArchiveFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the data is big-endian.
func (f ArchiveFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *ArchiveFlag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *ArchiveFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// WithEngine sets the byte order matching engine.
func (f *ArchiveFlag) WithEngine(engine endian.EndianEngine) {
	if endian.Name(engine) == "big" {
		f.WithBigEndian()
	} else {
		f.WithLittleEndian()
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f ArchiveFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// SampleDType returns the sample dtype.
func (f ArchiveFlag) SampleDType() format.DType {
	return format.DType(f.DType)
}

// Compression returns the chunk codec.
func (f ArchiveFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// Validate checks if the flag contains valid values.
func (f ArchiveFlag) Validate() error {
	if f.GetMagicNumber() != MagicArchiveV1Opt {
		return errs.ErrInvalidMagicNumber
	}
	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidHeader
	}
	if !f.SampleDType().Valid() {
		return errs.ErrInvalidDType
	}
	if _, ok := validCompressions[f.CompressionType]; !ok {
		return errs.ErrInvalidHeader
	}

	return nil
}

// GetEndianEngine returns the appropriate endian engine based on the flag.
func (f ArchiveFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
