package archive

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/arloliu/ephys/compress"
	"github.com/arloliu/ephys/encoding"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/internal/hash"
	"github.com/arloliu/ephys/internal/mmap"
	"github.com/arloliu/ephys/recording"
	"github.com/arloliu/ephys/section"
)

// Recording is an archive opened for reading. It is safe for concurrent
// readers.
type Recording struct {
	*recording.Base

	path     string
	mapping  *mmap.Mapping
	header   section.ArchiveHeader
	segments []section.SegmentEntry
	chunks   []section.ChunkEntry
	codec    compress.Codec
	samples  encoding.SampleCodec
	native   encoding.SampleCodec
	logger   *slog.Logger
	closed   atomic.Bool
}

var (
	_ recording.Recording      = (*Recording)(nil)
	_ recording.Closer         = (*Recording)(nil)
	_ recording.ChannelLister  = (*Recording)(nil)
	_ recording.PropertyHolder = (*Recording)(nil)
)

// Open maps an archive file and validates its header and tables. Chunk
// payloads are decoded lazily by Traces.
//
// Only WithLogger applies to Open.
func Open(path string, opts ...Option) (*Recording, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := parse(path, m, cfg.logger)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}

	return r, nil
}

func parse(path string, m *mmap.Mapping, logger *slog.Logger) (*Recording, error) {
	data := m.Bytes()

	header, err := section.ParseArchiveHeader(data)
	if err != nil {
		return nil, err
	}
	indexSize := uint64(header.ChunkCount) * section.ChunkEntrySize
	if header.IndexOffset > uint64(len(data)) || header.IndexOffset+indexSize != uint64(len(data)) {
		return nil, fmt.Errorf("%w: file size %d does not match index end %d",
			errs.ErrInvalidHeader, len(data), header.IndexOffset+indexSize)
	}

	engine := header.Flag.GetEndianEngine()
	dtype := header.Flag.SampleDType()
	nc := int(header.NumChannels)

	channels, err := section.ParseChannelTable(data[header.ChannelTableOffset:header.SegmentTableOffset], nc, engine)
	if err != nil {
		return nil, err
	}
	ids := make([]string, nc)
	for i, ch := range channels {
		ids[i] = ch.ID
	}
	base, err := recording.NewBase(nc, header.SamplingFrequency, dtype, ids)
	if err != nil {
		return nil, err
	}
	if header.Flag.HasGains() {
		gains := make([]float64, nc)
		offsets := make([]float64, nc)
		for i, ch := range channels {
			gains[i], offsets[i] = ch.Gain, ch.Offset
		}
		if err := base.Properties().SetGains(gains...); err != nil {
			return nil, err
		}
		if err := base.Properties().SetOffsets(offsets...); err != nil {
			return nil, err
		}
	}

	codec, err := compress.GetCodec(header.Flag.Compression())
	if err != nil {
		return nil, err
	}
	samples, err := encoding.NewSampleCodec(dtype, engine)
	if err != nil {
		return nil, err
	}
	native, _ := encoding.NewSampleCodec(dtype, endian.GetNativeEngine())

	r := &Recording{
		Base:     base,
		path:     path,
		mapping:  m,
		header:   header,
		segments: make([]section.SegmentEntry, header.NumSegments),
		chunks:   make([]section.ChunkEntry, header.ChunkCount),
		codec:    codec,
		samples:  samples,
		native:   native,
		logger:   logger,
	}

	for i := range r.chunks {
		off := header.IndexOffset + uint64(i)*section.ChunkEntrySize
		if r.chunks[i], err = section.ParseChunkEntry(data[off:off+section.ChunkEntrySize], engine); err != nil {
			return nil, err
		}
	}
	for i := range r.segments {
		off := header.SegmentTableOffset + uint64(i)*section.SegmentEntrySize
		if r.segments[i], err = section.ParseSegmentEntry(data[off:off+section.SegmentEntrySize], engine); err != nil {
			return nil, err
		}
	}
	if err := r.validateIndex(); err != nil {
		return nil, err
	}

	logger.Debug("opened archive", "path", path, "segments", len(r.segments),
		"chunks", len(r.chunks), "compression", codec.Type().String())

	return r, nil
}

// validateIndex checks that segments own consecutive chunks, that chunk
// sizes follow the chunk size and that payloads lie between the tables and
// the index.
func (r *Recording) validateIndex() error {
	chunkSize := uint64(r.header.ChunkSize)
	next := uint32(0)
	for i, seg := range r.segments {
		if seg.FirstChunk != next || uint64(seg.FirstChunk)+uint64(seg.ChunkCount) > uint64(len(r.chunks)) {
			return fmt.Errorf("%w: segment %d chunk range", errs.ErrInvalidHeader, i)
		}
		if want := (seg.NumSamples + chunkSize - 1) / chunkSize; uint64(seg.ChunkCount) != want {
			return fmt.Errorf("%w: segment %d has %d chunks, want %d", errs.ErrInvalidHeader, i, seg.ChunkCount, want)
		}

		remaining := seg.NumSamples
		for k := seg.FirstChunk; k < seg.FirstChunk+seg.ChunkCount; k++ {
			c := r.chunks[k]
			if uint64(c.NumSamples) != min(chunkSize, remaining) {
				return fmt.Errorf("%w: chunk %d has %d samples", errs.ErrInvalidHeader, k, c.NumSamples)
			}
			if c.Offset < r.header.PayloadOffset || c.Offset+uint64(c.Size) > r.header.IndexOffset {
				return fmt.Errorf("%w: chunk %d payload out of bounds", errs.ErrInvalidHeader, k)
			}
			remaining -= uint64(c.NumSamples)
		}
		next += seg.ChunkCount
	}
	if int(next) != len(r.chunks) {
		return fmt.Errorf("%w: %d chunks not owned by any segment", errs.ErrInvalidHeader, len(r.chunks)-int(next))
	}

	return nil
}

// Path returns the archive file path.
func (r *Recording) Path() string { return r.path }

// Compression returns the chunk codec.
func (r *Recording) Compression() format.CompressionType { return r.header.Flag.Compression() }

// ChunkSize returns the number of samples per full chunk.
func (r *Recording) ChunkSize() int { return int(r.header.ChunkSize) }

// NumChunks returns the total number of chunks.
func (r *Recording) NumChunks() int { return len(r.chunks) }

// ByteOrder returns the byte order of the stored samples.
func (r *Recording) ByteOrder() endian.EndianEngine { return r.samples.Engine() }

// Stats returns the compression statistics of the whole archive.
func (r *Recording) Stats() compress.Stats {
	stats := compress.Stats{Algorithm: r.Compression()}
	frameSize := r.NumChannels() * r.DType().Size()
	for _, c := range r.chunks {
		stats.Add(int(c.NumSamples)*frameSize, int(c.Size))
	}

	return stats
}

// NumSegments returns the number of segments.
func (r *Recording) NumSegments() int {
	return len(r.segments)
}

// NumSamples returns the sample count of one segment.
func (r *Recording) NumSamples(segment int) (int, error) {
	if err := recording.CheckSegment(segment, len(r.segments)); err != nil {
		return 0, err
	}

	return int(r.segments[segment].NumSamples), nil //nolint: gosec
}

// Traces returns samples [start, end) of the selected channels of one
// segment as a time-major buffer in host byte order. Only the chunks that
// overlap the range are decoded; a chunk whose checksum does not match
// fails with errs.ErrChecksumMismatch.
func (r *Recording) Traces(segment, start, end int, channels []int) (*recording.Traces, error) {
	if r.closed.Load() {
		return nil, errs.ErrClosed
	}
	if err := recording.CheckSegment(segment, len(r.segments)); err != nil {
		return nil, err
	}
	seg := r.segments[segment]
	nc := r.NumChannels()
	if err := recording.CheckRange(int(seg.NumSamples), nc, start, end, channels); err != nil {
		return nil, err
	}

	all := recording.IsAllChannels(channels, nc)
	if all {
		channels = recording.AllChannels(nc)
	}

	out, err := recording.NewTraces(r.DType(), end-start, len(channels), nil)
	if err != nil {
		return nil, err
	}
	if start == end {
		return out, nil
	}

	size := r.samples.Size()
	frameSize := nc * size
	outFrame := len(channels) * size
	chunkSize := r.ChunkSize()

	for k := start / chunkSize; k*chunkSize < end; k++ {
		chunkStart := k * chunkSize
		data, err := r.decodeChunk(int(seg.FirstChunk) + k)
		if err != nil {
			return nil, err
		}

		from := max(start, chunkStart)
		to := min(end, chunkStart+len(data)/frameSize)
		if all {
			copy(out.Data[(from-start)*outFrame:], data[(from-chunkStart)*frameSize:(to-chunkStart)*frameSize])
			continue
		}
		for s := from; s < to; s++ {
			frame := data[(s-chunkStart)*frameSize:]
			dst := out.Data[(s-start)*outFrame:]
			for j, c := range channels {
				copy(dst[j*size:(j+1)*size], frame[c*size:(c+1)*size])
			}
		}
	}

	if !r.samples.IsNative() {
		if err := encoding.Transcode(out.Data, r.native, out.Data, r.samples, out.Len()); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// decodeChunk decompresses one chunk and verifies its checksum.
func (r *Recording) decodeChunk(index int) ([]byte, error) {
	c := r.chunks[index]
	payload := r.mapping.Bytes()[c.Offset : c.Offset+uint64(c.Size)]
	size := int(c.NumSamples) * r.NumChannels() * r.samples.Size()

	data, err := r.codec.Decompress(payload, size)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", index, err)
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: chunk %d decoded to %d bytes, want %d", errs.ErrCorruptPayload, index, len(data), size)
	}
	if sum := hash.Checksum(data); sum != c.Checksum {
		return nil, fmt.Errorf("%w: chunk %d", errs.ErrChecksumMismatch, index)
	}

	return data, nil
}

// Verify decodes every chunk of the archive and checks its checksum.
func (r *Recording) Verify() error {
	if r.closed.Load() {
		return errs.ErrClosed
	}
	for i := range r.chunks {
		if _, err := r.decodeChunk(i); err != nil {
			return err
		}
	}

	return nil
}

// Close unmaps the archive file.
func (r *Recording) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	return r.mapping.Close()
}

// Verify opens the archive at path and checks every chunk checksum.
func Verify(path string, opts ...Option) error {
	r, err := Open(path, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Verify()
}
