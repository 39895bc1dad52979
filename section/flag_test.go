package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

func TestNewArchiveFlag(t *testing.T) {
	flag := NewArchiveFlag(format.Int16, format.CompressionZstd)

	require.Equal(t, uint16(MagicArchiveV1Opt), flag.GetMagicNumber())
	require.True(t, flag.IsLittleEndian())
	require.False(t, flag.IsBigEndian())
	require.False(t, flag.HasGains())
	require.Equal(t, format.Int16, flag.SampleDType())
	require.Equal(t, format.CompressionZstd, flag.Compression())
	require.NoError(t, flag.Validate())
}

func TestArchiveFlag_Options(t *testing.T) {
	flag := NewArchiveFlag(format.Float32, format.CompressionNone)

	flag.SetHasGains(true)
	require.True(t, flag.HasGains())
	flag.WithBigEndian()
	require.True(t, flag.IsBigEndian())
	require.Equal(t, endian.GetBigEndianEngine(), flag.GetEndianEngine())
	require.Equal(t, uint16(MagicArchiveV1Opt), flag.GetMagicNumber())

	flag.SetHasGains(false)
	flag.WithEngine(endian.GetLittleEndianEngine())
	require.False(t, flag.HasGains())
	require.True(t, flag.IsLittleEndian())
	require.Equal(t, uint16(MagicArchiveV1Opt), flag.Options)
}

func TestArchiveFlag_Validate(t *testing.T) {
	tests := []struct {
		name string
		flag ArchiveFlag
		err  error
	}{
		{"bad magic", ArchiveFlag{Options: 0xEA10, DType: uint8(format.Int16), CompressionType: uint8(format.CompressionNone)}, errs.ErrInvalidMagicNumber},
		{"reserved bits", ArchiveFlag{Options: MagicArchiveV1Opt | 0x4, DType: uint8(format.Int16), CompressionType: uint8(format.CompressionNone)}, errs.ErrInvalidHeader},
		{"bad dtype", ArchiveFlag{Options: MagicArchiveV1Opt, DType: 0xF0, CompressionType: uint8(format.CompressionNone)}, errs.ErrInvalidDType},
		{"bad codec", ArchiveFlag{Options: MagicArchiveV1Opt, DType: uint8(format.Int16), CompressionType: 0x9}, errs.ErrInvalidHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.flag.Validate(), tt.err)
		})
	}
}
