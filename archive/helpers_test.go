package archive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/recording"
)

// sineSource is an in-memory source with a deterministic, mildly
// compressible waveform per channel.
type sineSource struct {
	dtype       format.DType
	numChannels int
	sf          float64
	samples     []int
}

func (m *sineSource) NumSegments() int           { return len(m.samples) }
func (m *sineSource) NumChannels() int           { return m.numChannels }
func (m *sineSource) SamplingFrequency() float64 { return m.sf }
func (m *sineSource) DType() format.DType        { return m.dtype }

func (m *sineSource) NumSamples(segment int) (int, error) {
	if err := recording.CheckSegment(segment, len(m.samples)); err != nil {
		return 0, err
	}

	return m.samples[segment], nil
}

func (m *sineSource) value(segment, s, c int) float64 {
	v := float64(((s*(c+1)+segment*7)%64)-32) * 3
	if m.dtype.IsFloat() {
		return v + 0.5
	}

	return v
}

func (m *sineSource) Traces(segment, start, end int, channels []int) (*recording.Traces, error) {
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

func requireSameTraces(t *testing.T, want, got recording.Recording) {
	t.Helper()

	require.Equal(t, want.NumSegments(), got.NumSegments())
	require.Equal(t, want.NumChannels(), got.NumChannels())
	require.Equal(t, want.DType(), got.DType())
	require.Equal(t, want.SamplingFrequency(), got.SamplingFrequency())
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
