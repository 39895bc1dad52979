package spikeglx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/internal/options"
	"github.com/arloliu/ephys/neuropixels"
	"github.com/arloliu/ephys/probe"
	"github.com/arloliu/ephys/recording"
)

// curatedAnnotations are the stream annotations kept by default.
var curatedAnnotations = []string{"probe_type", probe.AnnotationProbeType, probe.AnnotationSerial, "stream_name"}

// Recording is one SpikeGLX stream with its hardware metadata attached.
type Recording struct {
	*recording.Base

	stream   Stream
	folder   string
	loadSync bool
}

var (
	_ recording.Recording      = (*Recording)(nil)
	_ recording.Closer         = (*Recording)(nil)
	_ recording.PropertyHolder = (*Recording)(nil)
)

// Open parses folder with rawio and selects one stream.
//
// Unless the stream is nidq or the sync channel is loaded, the probe is read
// from the stream's .meta file (the ap file for an lf stream) and the
// inter_sample_shift property is set. A missing .meta file fails with
// errs.ErrMetadataNotFound. An unrecognized probe type falls back to 12
// channels per ADC. Streams that are not selected are closed, and so is the
// selected one when Open fails.
func Open(rawio RawIO, folder string, opts ...Option) (*Recording, error) {
	cfg, err := options.Build(&Config{logger: slog.New(slog.DiscardHandler)}, opts...)
	if err != nil {
		return nil, err
	}
	if rawio == nil {
		return nil, fmt.Errorf("%w: nil RawIO", errs.ErrInvalidArgument)
	}

	ds, err := rawio.Parse(folder, cfg.loadSync)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", folder, err)
	}

	streams := ds.Streams()
	selected, err := selectStream(streams, cfg.streamID)
	if err != nil {
		closeStreams(streams, -1, cfg.logger)
		return nil, err
	}
	closeStreams(streams, selected, cfg.logger)
	stream := streams[selected]
	cfg.logger.Debug("selected stream", "folder", folder, "stream_id", stream.ID())

	r, err := newRecording(stream, folder, cfg)
	if err != nil {
		closeStreams(streams[selected:selected+1], -1, cfg.logger)
		return nil, err
	}

	return r, nil
}

func newRecording(stream Stream, folder string, cfg *Config) (*Recording, error) {
	base, err := recording.NewBase(stream.NumChannels(), stream.SamplingFrequency(), stream.DType(), stream.ChannelIDs())
	if err != nil {
		return nil, err
	}
	r := &Recording{Base: base, stream: stream, folder: folder, loadSync: cfg.loadSync}

	if gains := stream.Gains(); len(gains) > 0 {
		if err := r.Properties().SetGains(gains...); err != nil {
			return nil, err
		}
	}
	if offsets := stream.Offsets(); len(offsets) > 0 {
		if err := r.Properties().SetOffsets(offsets...); err != nil {
			return nil, err
		}
	}
	r.copyAnnotations(stream.Annotations(), cfg.allAnnotations)

	if strings.Contains(stream.ID(), "nidq") || cfg.loadSync {
		cfg.logger.Debug("skipping probe", "stream_id", stream.ID(), "load_sync_channel", cfg.loadSync)
		return r, nil
	}
	if err := r.attachProbe(cfg); err != nil {
		return nil, err
	}

	return r, nil
}

// closeStreams closes every stream except streams[keep] that holds
// resources.
func closeStreams(streams []Stream, keep int, logger *slog.Logger) {
	for i, s := range streams {
		if i == keep {
			continue
		}
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("close stream", "stream_id", s.ID(), "error", err)
			}
		}
	}
}

func selectStream(streams []Stream, id string) (int, error) {
	ids := make([]string, len(streams))
	for i, s := range streams {
		ids[i] = s.ID()
	}

	if id == "" {
		if len(streams) == 1 {
			return 0, nil
		}

		return -1, fmt.Errorf("%w: folder has %d streams, specify one of %v", errs.ErrInvalidStreamID, len(streams), ids)
	}

	if i := slices.Index(ids, id); i >= 0 {
		return i, nil
	}

	return -1, fmt.Errorf("%w: %q is not one of %v", errs.ErrInvalidStreamID, id, ids)
}

func (r *Recording) copyAnnotations(src map[string]any, all bool) {
	r.Annotate("stream_id", r.stream.ID())
	if all {
		for k, v := range src {
			r.Annotate(k, v)
		}

		return
	}
	for _, k := range curatedAnnotations {
		if v, ok := src[k]; ok {
			r.Annotate(k, v)
		}
	}
}

// MetaFileFor returns the .meta file holding the geometry of a stream. The
// lf band has no geometry of its own and uses its ap sibling. Only the file
// name is rewritten.
func MetaFileFor(streamID, metaFile string) string {
	if strings.Contains(streamID, "lf") {
		dir, name := filepath.Split(metaFile)
		return dir + strings.ReplaceAll(name, ".lf", ".ap")
	}

	return metaFile
}

func (r *Recording) attachProbe(cfg *Config) error {
	metaFile := MetaFileFor(r.stream.ID(), r.stream.MetaFile())
	if _, err := os.Stat(metaFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", errs.ErrMetadataNotFound, err)
		}

		return err
	}
	if cfg.probeReader == nil {
		return fmt.Errorf("%w: no probe reader for %s", errs.ErrInvalidArgument, metaFile)
	}

	p, err := cfg.probeReader.Read(metaFile)
	if err != nil {
		return fmt.Errorf("read probe %s: %w", metaFile, err)
	}

	mode := format.GroupNone
	if p.HasShanks() {
		mode = format.GroupByShank
	}
	if err := r.SetProbe(p, mode); err != nil {
		return err
	}
	cfg.logger.Debug("attached probe", "meta_file", metaFile, "contacts", p.NumContacts(), "group_mode", mode.String())

	probeType, _ := p.Annotation(probe.AnnotationProbeType)
	if _, ok := neuropixels.ProbeTypeCode(probeType); !ok {
		cfg.logger.Debug("unrecognized probe type", "imDatPrb_type", probeType,
			"channels_per_adc", neuropixels.ChannelsPerADCDefault)
	}
	perADC := neuropixels.ChannelsPerADC(probeType)

	shifts, err := neuropixels.SampleShifts(r.NumChannels(), perADC)
	if err != nil {
		return err
	}
	if err := r.Properties().SetInterSampleShift(shifts); err != nil {
		return err
	}
	cfg.logger.Debug("set inter-sample shift", "channels_per_adc", perADC,
		"adc_groups", neuropixels.ADCGroups(r.NumChannels(), perADC))

	return nil
}

// StreamID returns the selected stream.
func (r *Recording) StreamID() string { return r.stream.ID() }

// Folder returns the dataset folder.
func (r *Recording) Folder() string { return r.folder }

// SyncChannelLoaded reports whether the trailing sync channel is included.
func (r *Recording) SyncChannelLoaded() bool { return r.loadSync }

func (r *Recording) NumSegments() int { return r.stream.NumSegments() }

func (r *Recording) NumSamples(segment int) (int, error) {
	if err := recording.CheckSegment(segment, r.NumSegments()); err != nil {
		return 0, err
	}

	return r.stream.NumSamples(segment)
}

// Traces validates the request and delegates it to the stream.
func (r *Recording) Traces(segment, start, end int, channels []int) (*recording.Traces, error) {
	n, err := r.NumSamples(segment)
	if err != nil {
		return nil, err
	}
	if err := recording.CheckRange(n, r.NumChannels(), start, end, channels); err != nil {
		return nil, err
	}

	return r.stream.Traces(segment, start, end, channels)
}

// Close closes the stream when it holds resources.
func (r *Recording) Close() error {
	if c, ok := r.stream.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
