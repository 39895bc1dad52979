package spikeglx

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/probe"
	"github.com/arloliu/ephys/recording"
)

type fakeStream struct {
	id          string
	metaFile    string
	numChannels int
	samples     []int
	gains       []float64
	annotations map[string]any
	closed      bool
}

func (s *fakeStream) ID() string                      { return s.id }
func (s *fakeStream) MetaFile() string                { return s.metaFile }
func (s *fakeStream) NumSegments() int                { return len(s.samples) }
func (s *fakeStream) NumChannels() int                { return s.numChannels }
func (s *fakeStream) SamplingFrequency() float64      { return 30000 }
func (s *fakeStream) DType() format.DType             { return format.Int16 }
func (s *fakeStream) ChannelIDs() []string            { return nil }
func (s *fakeStream) Gains() []float64                { return s.gains }
func (s *fakeStream) Offsets() []float64              { return nil }
func (s *fakeStream) Annotations() map[string]any     { return s.annotations }
func (s *fakeStream) NumSamples(seg int) (int, error) { return s.samples[seg], nil }

func (s *fakeStream) Traces(seg, start, end int, channels []int) (*recording.Traces, error) {
	nc := s.numChannels
	if channels != nil {
		nc = len(channels)
	}

	return recording.NewTraces(format.Int16, end-start, nc, nil)
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeDataset []Stream

func (d fakeDataset) Streams() []Stream { return d }

func rawIOFor(streams ...Stream) RawIO {
	return RawIOFunc(func(string, bool) (Dataset, error) {
		return fakeDataset(streams), nil
	})
}

// writeMeta creates an empty .meta file; its content is the probe reader's
// business.
func writeMeta(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("imDatPrb_type=0\n"), 0o644))

	return path
}

type probeReader struct {
	probeType any
	shanks    []string
	contacts  int
	read      []string
}

func (r *probeReader) Read(metaFile string) (*probe.Probe, error) {
	r.read = append(r.read, metaFile)
	positions := make([][]float64, r.contacts)
	for i := range positions {
		positions[i] = []float64{float64(i % 2 * 32), float64(i / 2 * 20)}
	}
	p, err := probe.New(2, positions)
	if err != nil {
		return nil, err
	}
	if r.shanks != nil {
		p.ShankIDs = r.shanks
	}
	if r.probeType != nil {
		p.Annotate(probe.AnnotationProbeType, r.probeType)
	}

	return p, nil
}

func imecStreams(dir string) (*fakeStream, *fakeStream, *fakeStream) {
	ap := &fakeStream{
		id: "imec0.ap", metaFile: filepath.Join(dir, "run_g0_t0.imec0.ap.meta"),
		numChannels: 24, samples: []int{100}, gains: []float64{2.34},
		annotations: map[string]any{"stream_name": "imec0.ap", "imDatPrb_type": 0, "fileCreateTime": "2024-01-01"},
	}
	lf := &fakeStream{
		id: "imec0.lf", metaFile: filepath.Join(dir, "run_g0_t0.imec0.lf.meta"),
		numChannels: 24, samples: []int{10},
	}
	nidq := &fakeStream{
		id: "nidq", metaFile: filepath.Join(dir, "run_g0_t0.nidq.meta"),
		numChannels: 8, samples: []int{100},
	}

	return ap, lf, nidq
}

func TestOpen_AttachesProbeAndShifts(t *testing.T) {
	dir := t.TempDir()
	ap, lf, nidq := imecStreams(dir)
	writeMeta(t, dir, "run_g0_t0.imec0.ap.meta")
	reader := &probeReader{probeType: 0, contacts: 24}

	rec, err := Open(rawIOFor(ap, lf, nidq), dir, WithStreamID("imec0.ap"), WithProbeReader(reader))
	require.NoError(t, err)

	require.True(t, rec.HasProbe())
	require.LessOrEqual(t, rec.Probe().NumContacts(), rec.NumChannels())
	require.Equal(t, []string{ap.metaFile}, reader.read)

	shifts, ok := rec.Properties().InterSampleShift()
	require.True(t, ok)
	require.Len(t, shifts, 24)
	require.InDelta(t, 0.0, shifts[0], 1e-9)
	require.InDelta(t, 0.0, shifts[12], 1e-9)
	require.InDelta(t, 1.0/12, shifts[13], 1e-9)
	require.InDelta(t, 11.0/12, shifts[23], 1e-9)

	groups, ok := rec.Properties().Groups()
	require.True(t, ok)
	for _, g := range groups {
		require.Equal(t, 0, g)
	}

	gains, ok := rec.Properties().Gains()
	require.True(t, ok)
	require.Equal(t, 2.34, gains[23])

	require.Equal(t, "imec0.ap", rec.StreamID())
	require.Equal(t, dir, rec.Folder())
}

func TestOpen_NP2UsesSixteenPerADC(t *testing.T) {
	dir := t.TempDir()
	ap, _, _ := imecStreams(dir)
	writeMeta(t, dir, "run_g0_t0.imec0.ap.meta")

	rec, err := Open(rawIOFor(ap), dir, WithProbeReader(&probeReader{probeType: "2", contacts: 24}))
	require.NoError(t, err)

	shifts, _ := rec.Properties().InterSampleShift()
	require.InDelta(t, 15.0/16, shifts[15], 1e-9)
	require.InDelta(t, 0.0, shifts[16], 1e-9)
	require.InDelta(t, 7.0/16, shifts[23], 1e-9)
}

func TestOpen_UnknownProbeTypeFallsBack(t *testing.T) {
	dir := t.TempDir()
	ap, _, _ := imecStreams(dir)
	writeMeta(t, dir, "run_g0_t0.imec0.ap.meta")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rec, err := Open(rawIOFor(ap), dir, WithProbeReader(&probeReader{contacts: 24}), WithLogger(logger))
	require.NoError(t, err)

	shifts, _ := rec.Properties().InterSampleShift()
	require.InDelta(t, 11.0/12, shifts[11], 1e-9)
	require.Contains(t, logs.String(), "unrecognized probe type")
}

func TestOpen_ShanksGroupChannels(t *testing.T) {
	dir := t.TempDir()
	ap, _, _ := imecStreams(dir)
	ap.numChannels = 4
	writeMeta(t, dir, "run_g0_t0.imec0.ap.meta")

	reader := &probeReader{probeType: 24, contacts: 4, shanks: []string{"0", "0", "3", "3"}}
	rec, err := Open(rawIOFor(ap), dir, WithProbeReader(reader))
	require.NoError(t, err)

	groups, ok := rec.Properties().Groups()
	require.True(t, ok)
	require.Equal(t, []int{0, 0, 1, 1}, groups)
}

func TestOpen_LFUsesAPMeta(t *testing.T) {
	dir := t.TempDir()
	ap, lf, _ := imecStreams(dir)
	writeMeta(t, dir, "run_g0_t0.imec0.ap.meta")
	reader := &probeReader{probeType: 0, contacts: 24}

	rec, err := Open(rawIOFor(ap, lf), dir, WithStreamID("imec0.lf"), WithProbeReader(reader))
	require.NoError(t, err)
	require.True(t, rec.HasProbe())
	require.Equal(t, []string{ap.metaFile}, reader.read)

	require.Equal(t, "x/run.imec0.ap.meta", MetaFileFor("imec0.lf", "x/run.imec0.lf.meta"))
	require.Equal(t, "x/run.imec0.ap.meta", MetaFileFor("imec0.ap", "x/run.imec0.ap.meta"))
	// directories are left alone
	require.Equal(t, filepath.Join("data", "x.lfp", "run.imec0.ap.meta"),
		MetaFileFor("imec0.lf", filepath.Join("data", "x.lfp", "run.imec0.lf.meta")))
}

func TestOpen_ClosesUnusedStreams(t *testing.T) {
	dir := t.TempDir()
	writeMeta(t, dir, "run_g0_t0.imec0.ap.meta")

	ap, lf, nidq := imecStreams(dir)
	rec, err := Open(rawIOFor(ap, lf, nidq), dir, WithStreamID("imec0.ap"),
		WithProbeReader(&probeReader{probeType: 0, contacts: 24}))
	require.NoError(t, err)
	require.False(t, ap.closed)
	require.True(t, lf.closed)
	require.True(t, nidq.closed)
	require.NoError(t, rec.Close())
	require.True(t, ap.closed)

	// unknown stream id
	ap, lf, nidq = imecStreams(dir)
	_, err = Open(rawIOFor(ap, lf, nidq), dir, WithStreamID("imec1.ap"))
	require.ErrorIs(t, err, errs.ErrInvalidStreamID)
	require.True(t, ap.closed)
	require.True(t, lf.closed)
	require.True(t, nidq.closed)

	// missing .meta for the selected stream
	ap, lf, _ = imecStreams(t.TempDir())
	_, err = Open(rawIOFor(ap, lf), dir, WithStreamID("imec0.ap"),
		WithProbeReader(&probeReader{probeType: 0, contacts: 24}))
	require.ErrorIs(t, err, errs.ErrMetadataNotFound)
	require.True(t, ap.closed)
	require.True(t, lf.closed)
}

func TestOpen_SkipsProbe(t *testing.T) {
	dir := t.TempDir()
	ap, _, nidq := imecStreams(dir)
	reader := &probeReader{probeType: 0, contacts: 24}

	t.Run("sync channel", func(t *testing.T) {
		ap.numChannels = 25
		defer func() { ap.numChannels = 24 }()

		rec, err := Open(rawIOFor(ap), dir, WithSyncChannel(true), WithProbeReader(reader))
		require.NoError(t, err)
		require.False(t, rec.HasProbe())
		require.False(t, rec.Properties().Has("inter_sample_shift"))
		require.True(t, rec.SyncChannelLoaded())
	})

	t.Run("nidq", func(t *testing.T) {
		rec, err := Open(rawIOFor(ap, nidq), dir, WithStreamID("nidq"), WithProbeReader(reader))
		require.NoError(t, err)
		require.False(t, rec.HasProbe())
		require.False(t, rec.Properties().Has("inter_sample_shift"))
	})

	require.Empty(t, reader.read)
}

func TestOpen_MissingMeta(t *testing.T) {
	dir := t.TempDir()
	ap, _, _ := imecStreams(dir)

	_, err := Open(rawIOFor(ap), dir, WithProbeReader(&probeReader{contacts: 24}))
	require.ErrorIs(t, err, errs.ErrMetadataNotFound)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_StreamSelection(t *testing.T) {
	dir := t.TempDir()
	ap, lf, nidq := imecStreams(dir)

	_, err := Open(rawIOFor(ap, lf, nidq), dir)
	require.ErrorIs(t, err, errs.ErrInvalidStreamID)
	require.Contains(t, err.Error(), "imec0.lf")

	_, err = Open(rawIOFor(ap, lf), dir, WithStreamID("imec1.ap"))
	require.ErrorIs(t, err, errs.ErrInvalidStreamID)

	parseErr := errors.New("bad folder")
	_, err = Open(RawIOFunc(func(string, bool) (Dataset, error) { return nil, parseErr }), dir)
	require.ErrorIs(t, err, parseErr)

	_, err = Open(nil, dir)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestOpen_ProbeErrors(t *testing.T) {
	dir := t.TempDir()
	ap, _, _ := imecStreams(dir)
	writeMeta(t, dir, "run_g0_t0.imec0.ap.meta")

	_, err := Open(rawIOFor(ap), dir)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = Open(rawIOFor(ap), dir, WithProbeReader(&probeReader{contacts: 25}))
	require.ErrorIs(t, err, errs.ErrProbeMismatch)
}

func TestOpen_Annotations(t *testing.T) {
	dir := t.TempDir()
	ap, _, _ := imecStreams(dir)
	writeMeta(t, dir, "run_g0_t0.imec0.ap.meta")
	reader := &probeReader{contacts: 24}

	rec, err := Open(rawIOFor(ap), dir, WithProbeReader(reader))
	require.NoError(t, err)
	_, ok := rec.Annotation("fileCreateTime")
	require.False(t, ok)
	v, ok := rec.Annotation("stream_name")
	require.True(t, ok)
	require.Equal(t, "imec0.ap", v)

	rec, err = Open(rawIOFor(ap), dir, WithProbeReader(reader), WithAllAnnotations(true))
	require.NoError(t, err)
	v, ok = rec.Annotation("fileCreateTime")
	require.True(t, ok)
	require.Equal(t, "2024-01-01", v)
}

func TestRecording_Traces(t *testing.T) {
	dir := t.TempDir()
	_, _, nidq := imecStreams(dir)

	rec, err := Open(rawIOFor(nidq), dir)
	require.NoError(t, err)

	tr, err := rec.Traces(0, 10, 20, []int{0, 7})
	require.NoError(t, err)
	require.Equal(t, 10, tr.NumSamples)
	require.Equal(t, 2, tr.NumChannels)

	_, err = rec.Traces(0, 0, 101, nil)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	_, err = rec.Traces(1, 0, 1, nil)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	_, err = rec.Traces(0, 0, 1, []int{8})
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

	require.NoError(t, rec.Close())
	require.True(t, nidq.closed)
}
