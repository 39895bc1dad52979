package binaryrec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

func TestFolder_RoundTrip(t *testing.T) {
	paths := threeByThirty(t)
	src, err := Open(paths, 10000, 3, format.Int16,
		WithGainToUV(0.5), WithChannelIDs([]string{"AP0", "AP1", "AP2"}))
	require.NoError(t, err)
	defer src.Close()
	require.NoError(t, src.Properties().SetInterSampleShift([]float64{0, 1.0 / 12, 2.0 / 12}))

	dir := filepath.Join(t.TempDir(), "cache")
	info, err := WriteFolder(context.Background(), src, dir,
		WithTimeAxis(format.ChannelMajor), WithByteOrder(endian.GetBigEndianEngine()))
	require.NoError(t, err)
	require.Len(t, info.Segments, 2)
	require.Equal(t, "big", info.ByteOrder)
	require.FileExists(t, filepath.Join(dir, InfoFile))
	require.FileExists(t, filepath.Join(dir, "traces_cached_seg1.raw"))

	parsed, err := ReadFolderInfo(dir)
	require.NoError(t, err)
	require.Equal(t, info, parsed)
	require.Equal(t, format.ChannelMajor, parsed.TimeAxis)
	require.Equal(t, format.Int16, parsed.DType)

	rec, err := OpenFolder(dir, WithVerify(true))
	require.NoError(t, err)
	defer rec.Close()

	requireSameTraces(t, src, rec)
	require.Equal(t, []string{"AP0", "AP1", "AP2"}, rec.ChannelIDs())
	gains, ok := rec.Properties().Gains()
	require.True(t, ok)
	require.Equal(t, []float64{0.5, 0.5, 0.5}, gains)
	shifts, ok := rec.Properties().InterSampleShift()
	require.True(t, ok)
	require.InDelta(t, 2.0/12, shifts[2], 1e-12)

	require.NoError(t, Verify(dir))
}

func TestFolder_Exists(t *testing.T) {
	src := &memRecording{dtype: format.Int16, numChannels: 2, sf: 1000, samples: []int{3}}
	dir := t.TempDir()

	_, err := WriteFolder(context.Background(), src, dir)
	require.NoError(t, err)

	_, err = WriteFolder(context.Background(), src, dir)
	require.ErrorIs(t, err, errs.ErrFileExists)

	_, err = WriteFolder(context.Background(), src, dir, WithOverwrite(true))
	require.NoError(t, err)
}

func TestFolder_Corruption(t *testing.T) {
	src := &memRecording{dtype: format.Int16, numChannels: 2, sf: 1000, samples: []int{8}}
	dir := t.TempDir()
	_, err := WriteFolder(context.Background(), src, dir)
	require.NoError(t, err)

	seg := filepath.Join(dir, SegmentFileName(0))
	data, err := os.ReadFile(seg)
	require.NoError(t, err)
	data[3] ^= 0x40
	require.NoError(t, os.WriteFile(seg, data, 0o644))

	// without verification the folder still opens
	rec, err := OpenFolder(dir)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	_, err = OpenFolder(dir, WithVerify(true))
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	require.ErrorIs(t, Verify(dir), errs.ErrChecksumMismatch)

	// a truncated frame is a dimension error
	require.NoError(t, os.WriteFile(seg, data[:len(data)-4], 0o644))
	_, err = OpenFolder(dir)
	require.ErrorIs(t, err, errs.ErrDimensionMismatch)
}

func TestReadFolderInfo_Invalid(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadFolderInfo(dir)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(filepath.Join(dir, InfoFile), []byte("segments: []\n"), 0o644))
	_, err = ReadFolderInfo(dir)
	require.ErrorIs(t, err, errs.ErrInvalidHeader)

	require.NoError(t, os.WriteFile(filepath.Join(dir, InfoFile), []byte("dtype: complex128\nsegments: [{file: a}]\n"), 0o644))
	_, err = ReadFolderInfo(dir)
	require.ErrorIs(t, err, errs.ErrInvalidHeader)
}
