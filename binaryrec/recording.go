package binaryrec

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/arloliu/ephys/encoding"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/internal/mmap"
	"github.com/arloliu/ephys/recording"
)

// Recording is a multi-segment recording backed by memory-mapped files.
// It is safe for concurrent readers.
type Recording struct {
	*recording.Base

	segments   []*segment
	timeAxis   format.TimeAxis
	fileOffset int64
	codec      encoding.SampleCodec
	native     encoding.SampleCodec
	logger     *slog.Logger
	closed     atomic.Bool
}

var (
	_ recording.Recording      = (*Recording)(nil)
	_ recording.Closer         = (*Recording)(nil)
	_ recording.ChannelLister  = (*Recording)(nil)
	_ recording.PropertyHolder = (*Recording)(nil)
)

type segment struct {
	path       string
	mapping    *mmap.Mapping
	payload    []byte
	numSamples int
}

// Open maps one file per segment as a recording.
//
// Every file payload (its size minus the file offset) must be a whole
// number of frames of numChannels samples; otherwise Open fails with an
// *errs.DimensionMismatchError. Missing or unreadable files fail with the
// underlying *fs.PathError.
func Open(paths []string, samplingFrequency float64, numChannels int, dtype format.DType, opts ...Option) (*Recording, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return open(paths, samplingFrequency, numChannels, dtype, cfg)
}

func open(paths []string, samplingFrequency float64, numChannels int, dtype format.DType, cfg *Config) (*Recording, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no segment files", errs.ErrInvalidArgument)
	}

	base, err := recording.NewBase(numChannels, samplingFrequency, dtype, cfg.channelIDs)
	if err != nil {
		return nil, err
	}

	codec, err := encoding.NewSampleCodec(dtype, cfg.engine)
	if err != nil {
		return nil, err
	}
	native, _ := encoding.NewSampleCodec(dtype, endian.GetNativeEngine())

	r := &Recording{
		Base:       base,
		segments:   make([]*segment, 0, len(paths)),
		timeAxis:   cfg.timeAxis,
		fileOffset: cfg.fileOffset,
		codec:      codec,
		native:     native,
		logger:     cfg.logger,
	}

	frameSize := numChannels * dtype.Size()
	for _, path := range paths {
		seg, err := openSegment(path, cfg.fileOffset, frameSize)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.segments = append(r.segments, seg)
		r.logger.Debug("mapped segment", "path", path, "num_samples", seg.numSamples)
	}

	if len(cfg.gains) > 0 {
		if err := r.Properties().SetGains(cfg.gains...); err != nil {
			_ = r.Close()
			return nil, err
		}
	}
	if len(cfg.offsets) > 0 {
		if err := r.Properties().SetOffsets(cfg.offsets...); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	return r, nil
}

func openSegment(path string, fileOffset int64, frameSize int) (*segment, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	size := int64(m.Size())
	if fileOffset > size {
		_ = m.Close()
		return nil, fmt.Errorf("%w: file offset %d exceeds size %d of %s", errs.ErrInvalidArgument, fileOffset, size, path)
	}

	payload := size - fileOffset
	if payload%int64(frameSize) != 0 {
		_ = m.Close()
		return nil, &errs.DimensionMismatchError{Path: path, Size: payload, FrameSize: frameSize}
	}

	region, err := m.Region(int(fileOffset), int(payload))
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	// Writers and exporters stream segments front to back.
	_ = region.Advise(mmap.AccessSequential)

	return &segment{
		path:       path,
		mapping:    m,
		payload:    region.Bytes(),
		numSamples: int(payload / int64(frameSize)),
	}, nil
}

// NumSegments returns the number of segment files.
func (r *Recording) NumSegments() int {
	return len(r.segments)
}

// NumSamples returns the sample count of one segment.
func (r *Recording) NumSamples(segment int) (int, error) {
	if err := recording.CheckSegment(segment, len(r.segments)); err != nil {
		return 0, err
	}

	return r.segments[segment].numSamples, nil
}

// TimeAxis returns the physical layout of the files.
func (r *Recording) TimeAxis() format.TimeAxis { return r.timeAxis }

// FileOffset returns the number of header bytes skipped in each file.
func (r *Recording) FileOffset() int64 { return r.fileOffset }

// ByteOrder returns the byte order of the files.
func (r *Recording) ByteOrder() endian.EndianEngine { return r.codec.Engine() }

// FilePaths returns the segment file paths in segment order.
func (r *Recording) FilePaths() []string {
	paths := make([]string, len(r.segments))
	for i, s := range r.segments {
		paths[i] = s.path
	}

	return paths
}

// Traces returns samples [start, end) of the selected channels of one
// segment as a time-major buffer in host byte order. Nil channels selects
// all channels in order. Indices out of range fail with an
// *errs.IndexError; nothing is clipped.
//
// A time-major, all-channel read of a native byte order file aliases the
// memory mapping and is marked Borrowed; the buffer is only valid until
// Close.
func (r *Recording) Traces(segment, start, end int, channels []int) (*recording.Traces, error) {
	if r.closed.Load() {
		return nil, errs.ErrClosed
	}
	if err := recording.CheckSegment(segment, len(r.segments)); err != nil {
		return nil, err
	}
	seg := r.segments[segment]
	nc := r.NumChannels()
	if err := recording.CheckRange(seg.numSamples, nc, start, end, channels); err != nil {
		return nil, err
	}

	all := recording.IsAllChannels(channels, nc)
	if all {
		channels = recording.AllChannels(nc)
	}
	size := r.codec.Size()
	n := end - start

	if r.timeAxis == format.TimeMajor && all && r.codec.IsNative() {
		return &recording.Traces{
			DType:       r.DType(),
			NumSamples:  n,
			NumChannels: nc,
			Engine:      r.codec.Engine(),
			Data:        seg.payload[start*nc*size : end*nc*size],
			Borrowed:    true,
		}, nil
	}

	out, err := recording.NewTraces(r.DType(), n, len(channels), nil)
	if err != nil {
		return nil, err
	}

	switch {
	case r.timeAxis == format.TimeMajor && all:
		copy(out.Data, seg.payload[start*nc*size:end*nc*size])
	case r.timeAxis == format.TimeMajor:
		for s := range n {
			frame := seg.payload[(start+s)*nc*size:]
			dst := out.Data[s*len(channels)*size:]
			for j, c := range channels {
				copy(dst[j*size:(j+1)*size], frame[c*size:(c+1)*size])
			}
		}
	default:
		for j, c := range channels {
			column := seg.payload[(c*seg.numSamples+start)*size:]
			for s := range n {
				dst := (s*len(channels) + j) * size
				copy(out.Data[dst:dst+size], column[s*size:(s+1)*size])
			}
		}
	}

	if !r.codec.IsNative() {
		if err := encoding.Transcode(out.Data, r.native, out.Data, r.codec, out.Len()); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Close unmaps every segment file. Buffers returned with Borrowed set are
// invalid afterwards.
func (r *Recording) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errList []error
	for _, s := range r.segments {
		if err := s.mapping.Close(); err != nil {
			errList = append(errList, fmt.Errorf("close %s: %w", s.path, err))
		}
	}

	return errors.Join(errList...)
}
