package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/ephys/compress"
	"github.com/arloliu/ephys/encoding"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/internal/hash"
	"github.com/arloliu/ephys/internal/pool"
	"github.com/arloliu/ephys/recording"
	"github.com/arloliu/ephys/section"
)

// WriteResult describes an archive produced by Write.
type WriteResult struct {
	Path       string
	NumSamples []int
	NumChunks  int
	Stats      compress.Stats
}

// chunkJob is one chunk of one segment.
type chunkJob struct {
	segment int
	start   int
	end     int

	raw        *pool.ByteBuffer
	compressed *pool.ByteBuffer
	checksum   uint64
}

func (j *chunkJob) release() {
	pool.PutChunkBuffer(j.raw)
	pool.PutChunkBuffer(j.compressed)
	j.raw, j.compressed = nil, nil
}

// Write stores every segment of rec in one archive file at path.
//
// Chunks are read and compressed WithConcurrency at a time and written in
// segment and time order. An existing file fails with errs.ErrFileExists
// unless WithOverwrite is set. A failed write removes the partial file and
// leaves an overwritten target untouched.
func Write(ctx context.Context, rec recording.Recording, path string, opts ...Option) (*WriteResult, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	nc := rec.NumChannels()
	if nc <= 0 {
		return nil, fmt.Errorf("%w: source has %d channels", errs.ErrInvalidArgument, nc)
	}
	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}
	sampleCodec, err := encoding.NewSampleCodec(rec.DType(), cfg.engine)
	if err != nil {
		return nil, err
	}

	header := section.NewArchiveHeader(rec.DType(), cfg.compression, nc, rec.SamplingFrequency())
	header.Flag.WithEngine(cfg.engine)
	header.ChunkSize = uint32(cfg.chunkSize) //nolint: gosec

	channels, hasGains := channelEntries(rec)
	header.Flag.SetHasGains(hasGains)
	table, err := section.AppendChannelTable(nil, channels, cfg.engine)
	if err != nil {
		return nil, err
	}

	segments, jobs, err := planChunks(rec, cfg.chunkSize)
	if err != nil {
		return nil, err
	}
	header.NumSegments = uint32(len(segments))   //nolint: gosec
	header.ChunkCount = uint32(len(jobs))        //nolint: gosec
	header.ChannelTableSize = uint32(len(table)) //nolint: gosec
	header.SegmentTableOffset = header.ChannelTableOffset + uint64(len(table))
	header.PayloadOffset = header.SegmentTableOffset + uint64(len(segments))*section.SegmentEntrySize

	f, err := createTarget(path, cfg.overwrite)
	if err != nil {
		return nil, err
	}

	w := &archiveWriter{
		f:      f,
		rec:    rec,
		cfg:    cfg,
		codec:  codec,
		dst:    sampleCodec,
		header: header,
		stats:  compress.Stats{Algorithm: cfg.compression},
	}
	err = w.run(ctx, table, segments, jobs)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && f.Name() != path {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, err
	}

	res := &WriteResult{
		Path:       path,
		NumSamples: make([]int, len(segments)),
		NumChunks:  len(jobs),
		Stats:      w.stats,
	}
	for i, s := range segments {
		res.NumSamples[i] = int(s.NumSamples) //nolint: gosec
	}

	cfg.logger.Debug("wrote archive", "path", path, "segments", len(segments), "chunks", len(jobs),
		"compression", cfg.compression.String(), "ratio", w.stats.CompressionRatio())

	return res, nil
}

// createTarget opens the file the archive is written to. With overwrite the
// archive goes to a sibling temp file that replaces path once complete, so
// an open source mapping path keeps its original bytes.
func createTarget(path string, overwrite bool) (*os.File, error) {
	if !overwrite {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileExists, path)
		}

		return f, err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())

		return nil, err
	}

	return f, nil
}

// channelEntries collects the channel ids and, when the source carries
// them, the gains and offsets.
func channelEntries(rec recording.Recording) ([]section.ChannelEntry, bool) {
	nc := rec.NumChannels()
	entries := make([]section.ChannelEntry, nc)
	for i := range entries {
		entries[i] = section.ChannelEntry{ID: strconv.Itoa(i), Gain: 1}
	}

	if lister, ok := rec.(recording.ChannelLister); ok {
		if ids := lister.ChannelIDs(); len(ids) == nc {
			for i, id := range ids {
				entries[i].ID = id
			}
		}
	}

	holder, ok := rec.(recording.PropertyHolder)
	if !ok {
		return entries, false
	}
	gains, hasGains := holder.Properties().Gains()
	if hasGains {
		for i, g := range gains {
			entries[i].Gain = g
		}
	}
	offsets, hasOffsets := holder.Properties().Offsets()
	if hasOffsets {
		for i, o := range offsets {
			entries[i].Offset = o
		}
	}

	return entries, hasGains || hasOffsets
}

// planChunks builds the segment table and the ordered chunk list.
func planChunks(rec recording.Recording, chunkSize int) ([]section.SegmentEntry, []*chunkJob, error) {
	segments := make([]section.SegmentEntry, rec.NumSegments())
	var jobs []*chunkJob
	for seg := range segments {
		n, err := rec.NumSamples(seg)
		if err != nil {
			return nil, nil, err
		}

		first := len(jobs)
		for start := 0; start < n; start += chunkSize {
			jobs = append(jobs, &chunkJob{segment: seg, start: start, end: min(start+chunkSize, n)})
		}
		segments[seg] = section.SegmentEntry{
			NumSamples: uint64(n),                 //nolint: gosec
			FirstChunk: uint32(first),             //nolint: gosec
			ChunkCount: uint32(len(jobs) - first), //nolint: gosec
		}
	}

	return segments, jobs, nil
}

type archiveWriter struct {
	f      *os.File
	rec    recording.Recording
	cfg    *Config
	codec  compress.Codec
	dst    encoding.SampleCodec
	header *section.ArchiveHeader
	stats  compress.Stats
}

func (w *archiveWriter) run(ctx context.Context, table []byte, segments []section.SegmentEntry, jobs []*chunkJob) error {
	engine := w.cfg.engine

	// header placeholder, rewritten once the index offset is known
	prefix := make([]byte, section.HeaderSize, w.header.PayloadOffset)
	prefix = append(prefix, table...)
	entry := make([]byte, section.SegmentEntrySize)
	for i := range segments {
		if err := segments[i].WriteToSlice(entry, engine); err != nil {
			return err
		}
		prefix = append(prefix, entry...)
	}
	if _, err := w.f.Write(prefix); err != nil {
		return err
	}

	index := make([]byte, 0, len(jobs)*section.ChunkEntrySize)
	offset := w.header.PayloadOffset
	for batchStart := 0; batchStart < len(jobs); batchStart += w.cfg.concurrency {
		batch := jobs[batchStart:min(batchStart+w.cfg.concurrency, len(jobs))]
		if err := w.encodeBatch(ctx, batch); err != nil {
			return err
		}

		for _, job := range batch {
			payload := job.compressed.Bytes()
			if _, err := w.f.Write(payload); err != nil {
				job.release()
				return err
			}

			ce := section.ChunkEntry{
				Offset:     offset,
				Size:       uint32(len(payload)),        //nolint: gosec
				NumSamples: uint32(job.end - job.start), //nolint: gosec
				Checksum:   job.checksum,
			}
			index = append(index, ce.Bytes(engine)...)
			offset += uint64(len(payload))
			w.stats.Add(job.raw.Len(), len(payload))
			job.release()
		}
	}

	w.header.IndexOffset = offset
	if _, err := w.f.Write(index); err != nil {
		return err
	}
	if _, err := w.f.WriteAt(w.header.Bytes(), 0); err != nil {
		return err
	}

	return nil
}

// encodeBatch reads, converts and compresses a batch of chunks in parallel.
func (w *archiveWriter) encodeBatch(ctx context.Context, batch []*chunkJob) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			return w.encodeChunk(job)
		})
	}

	err := g.Wait()
	if err != nil {
		for _, job := range batch {
			if job.raw != nil {
				job.release()
			}
		}
	}

	return err
}

func (w *archiveWriter) encodeChunk(job *chunkJob) error {
	nc := w.rec.NumChannels()
	n := job.end - job.start

	tr, err := w.rec.Traces(job.segment, job.start, job.end, nil)
	if err != nil {
		return fmt.Errorf("read segment %d [%d, %d): %w", job.segment, job.start, job.end, err)
	}
	if tr.NumSamples != n || tr.NumChannels != nc {
		return fmt.Errorf("%w: source returned %dx%d traces for %dx%d request",
			errs.ErrDimensionMismatch, tr.NumSamples, tr.NumChannels, n, nc)
	}

	job.raw = pool.GetChunkBuffer()
	job.compressed = pool.GetChunkBuffer()

	raw := job.raw.Resize(tr.Len() * w.dst.Size())
	if err := encoding.Transcode(raw, w.dst, tr.Data, tr.Codec(), tr.Len()); err != nil {
		return err
	}
	job.checksum = hash.Checksum(raw)

	out, err := w.codec.Compress(job.compressed.Bytes()[:0], raw)
	if err != nil {
		return fmt.Errorf("compress segment %d chunk at %d: %w", job.segment, job.start, err)
	}
	job.compressed.B = out

	return nil
}
