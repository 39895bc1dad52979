package binaryrec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/encoding"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/recording"
)

// memRecording is an in-memory source whose sample (s, c) of segment seg is
// a deterministic function of its coordinates.
type memRecording struct {
	dtype       format.DType
	numChannels int
	sf          float64
	samples     []int
}

func (m *memRecording) NumSegments() int           { return len(m.samples) }
func (m *memRecording) NumChannels() int           { return m.numChannels }
func (m *memRecording) SamplingFrequency() float64 { return m.sf }
func (m *memRecording) DType() format.DType        { return m.dtype }

func (m *memRecording) NumSamples(segment int) (int, error) {
	if err := recording.CheckSegment(segment, len(m.samples)); err != nil {
		return 0, err
	}

	return m.samples[segment], nil
}

func (m *memRecording) value(segment, s, c int) float64 {
	v := float64((segment+1)*1000 + s*m.numChannels + c)
	switch {
	case m.dtype.IsFloat():
		return v + 0.25
	case m.dtype.IsSigned() && (s+c)%2 == 1:
		return -float64((s*m.numChannels + c) % 100)
	default:
		return float64(int64(v) % 120)
	}
}

func (m *memRecording) Traces(segment, start, end int, channels []int) (*recording.Traces, error) {
	n, err := m.NumSamples(segment)
	if err != nil {
		return nil, err
	}
	if err := recording.CheckRange(n, m.numChannels, start, end, channels); err != nil {
		return nil, err
	}
	if channels == nil {
		channels = recording.AllChannels(m.numChannels)
	}

	tr, err := recording.NewTraces(m.dtype, end-start, len(channels), nil)
	if err != nil {
		return nil, err
	}
	codec := tr.Codec()
	for s := range end - start {
		for j, c := range channels {
			v := m.value(segment, start+s, c)
			if m.dtype.IsFloat() {
				codec.PutFloat64(tr.Data, s*len(channels)+j, v)
			} else {
				codec.PutInt64(tr.Data, s*len(channels)+j, int64(v))
			}
		}
	}

	return tr, nil
}

// writeRaw writes int16 rows as a time-major native order file behind an
// optional header.
func writeRaw(t *testing.T, path string, header []byte, values []int16) {
	t.Helper()

	data, err := encoding.Encode(append([]byte(nil), header...), values, endian.GetNativeEngine())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func segmentPaths(dir string, n int, prefix string) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, prefix+SegmentFileName(i))
	}

	return paths
}

func requireSameTraces(t *testing.T, want, got recording.Recording) {
	t.Helper()

	require.Equal(t, want.NumSegments(), got.NumSegments())
	require.Equal(t, want.NumChannels(), got.NumChannels())
	for seg := range want.NumSegments() {
		n, err := want.NumSamples(seg)
		require.NoError(t, err)
		gotN, err := got.NumSamples(seg)
		require.NoError(t, err)
		require.Equal(t, n, gotN)

		a, err := want.Traces(seg, 0, n, nil)
		require.NoError(t, err)
		b, err := got.Traces(seg, 0, n, nil)
		require.NoError(t, err)
		require.True(t, a.Equal(b), "segment %d differs", seg)
	}
}

func requireIndexError(t *testing.T, err error) {
	t.Helper()
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}
