package ephys

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/archive"
	"github.com/arloliu/ephys/binaryrec"
	"github.com/arloliu/ephys/encoding"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/recording"
)

// writeSegments writes numSegments time-major native int16 files of
// numSamples frames and returns their paths.
func writeSegments(t *testing.T, dir string, numSegments, numSamples, numChannels int) []string {
	t.Helper()

	paths := make([]string, numSegments)
	for seg := range paths {
		values := make([]int16, numSamples*numChannels)
		for i := range values {
			values[i] = int16(seg*100 + i%50 - 25)
		}
		data, err := encoding.Encode(nil, values, endian.GetNativeEngine())
		require.NoError(t, err)

		paths[seg] = filepath.Join(dir, "seg"+string(rune('0'+seg))+".bin")
		require.NoError(t, os.WriteFile(paths[seg], data, 0o644))
	}

	return paths
}

func requireSameTraces(t *testing.T, want, got recording.Recording) {
	t.Helper()

	require.Equal(t, want.NumSegments(), got.NumSegments())
	for seg := range want.NumSegments() {
		n, err := want.NumSamples(seg)
		require.NoError(t, err)
		a, err := want.Traces(seg, 0, n, nil)
		require.NoError(t, err)
		b, err := got.Traces(seg, 0, n, nil)
		require.NoError(t, err)
		require.True(t, a.Equal(b), "segment %d differs", seg)
	}
}

func TestOpenBinary(t *testing.T) {
	paths := writeSegments(t, t.TempDir(), 2, 30, 3)

	rec, err := OpenBinary(paths, 30000, 3, format.Int16)
	require.NoError(t, err)
	defer rec.Close()

	require.Equal(t, 2, rec.NumSegments())
	n, err := rec.NumSamples(1)
	require.NoError(t, err)
	require.Equal(t, 30, n)

	tr, err := rec.Traces(1, 0, 1, nil)
	require.NoError(t, err)
	values, err := recording.As[int16](tr)
	require.NoError(t, err)
	require.Equal(t, []int16{75, 76, 77}, values)

	_, err = OpenBinary(paths, 30000, 7, format.Int16)
	require.ErrorIs(t, err, errs.ErrDimensionMismatch)
}

func TestWriteBinary(t *testing.T) {
	dir := t.TempDir()
	paths := writeSegments(t, dir, 2, 20, 4)
	rec, err := OpenBinary(paths, 1000, 4, format.Int16)
	require.NoError(t, err)
	defer rec.Close()

	out := []string{filepath.Join(dir, "out0.raw"), filepath.Join(dir, "out1.raw")}
	res, err := WriteBinary(context.Background(), rec, out,
		binaryrec.WithDType(format.Float32), binaryrec.WithTimeAxis(format.ChannelMajor))
	require.NoError(t, err)
	require.Equal(t, []int{20, 20}, res.NumSamples)
	require.False(t, res.LossyCast)

	back, err := OpenBinary(out, 1000, 4, format.Float32, binaryrec.WithTimeAxis(format.ChannelMajor))
	require.NoError(t, err)
	defer back.Close()

	tr, err := back.Traces(0, 2, 3, []int{1})
	require.NoError(t, err)
	require.Equal(t, -16.0, tr.Float64(0, 0))
}

func TestBinaryFolder(t *testing.T) {
	dir := t.TempDir()
	rec, err := OpenBinary(writeSegments(t, dir, 1, 64, 2), 2000, 2, format.Int16,
		binaryrec.WithGainToUV(0.5))
	require.NoError(t, err)
	defer rec.Close()

	folder := filepath.Join(dir, "cache")
	info, err := WriteBinaryFolder(context.Background(), rec, folder)
	require.NoError(t, err)
	require.Len(t, info.Segments, 1)

	back, err := OpenBinaryFolder(folder, binaryrec.WithVerify(true))
	require.NoError(t, err)
	defer back.Close()

	requireSameTraces(t, rec, back)
	gains, ok := back.Properties().Gains()
	require.True(t, ok)
	require.Equal(t, []float64{0.5, 0.5}, gains)
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	rec, err := OpenBinary(writeSegments(t, dir, 3, 100, 5), 30000, 5, format.Int16)
	require.NoError(t, err)
	defer rec.Close()

	path := filepath.Join(dir, "rec.eph")
	res, err := WriteArchive(context.Background(), rec, path,
		archive.WithCompression(format.CompressionLZ4), archive.WithChunkSize(32))
	require.NoError(t, err)
	require.Equal(t, 12, res.NumChunks)

	back, err := OpenArchive(path)
	require.NoError(t, err)
	defer back.Close()
	requireSameTraces(t, rec, back)
}

func TestSampleShifts(t *testing.T) {
	shifts, err := SampleShifts(384, 0)
	require.NoError(t, err)
	require.Len(t, shifts, 384)
	require.Equal(t, 0.0, shifts[0])
	require.InDelta(t, 1.0/12, shifts[1], 1e-12)
	require.Equal(t, 0.0, shifts[12])

	shifts, err = SampleShifts(32, "2")
	require.NoError(t, err)
	require.InDelta(t, 15.0/16, shifts[15], 1e-12)
	require.Equal(t, 0.0, shifts[16])

	_, err = SampleShifts(-1, 0)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}
