package binaryrec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/ephys/encoding"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/internal/hash"
	"github.com/arloliu/ephys/internal/pool"
	"github.com/arloliu/ephys/recording"
)

// WriteResult describes the files produced by Write.
type WriteResult struct {
	Paths      []string
	NumSamples []int
	// Checksums holds the xxHash64 of each written file.
	Checksums []uint64
	DType     format.DType
	TimeAxis  format.TimeAxis
	ByteOrder endian.EndianEngine
	// LossyCast reports that the written dtype cannot represent every value
	// of the source dtype.
	LossyCast bool
}

// Write materializes every segment of rec into paths[segment].
//
// The source is read in chunks of WithChunkSize samples and each chunk is
// cast to the target dtype, converted to the target byte order and written
// to its segment file in time order. Existing files fail with
// errs.ErrFileExists unless WithOverwrite is set; the check covers every
// path before any file is written.
func Write(ctx context.Context, rec recording.Recording, paths []string, opts ...Option) (*WriteResult, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return write(ctx, rec, paths, cfg)
}

func write(ctx context.Context, rec recording.Recording, paths []string, cfg *Config) (*WriteResult, error) {
	numSegments := rec.NumSegments()
	if len(paths) != numSegments {
		return nil, fmt.Errorf("%w: %d paths for %d segments", errs.ErrSegmentMismatch, len(paths), numSegments)
	}
	if rec.NumChannels() <= 0 {
		return nil, fmt.Errorf("%w: source has %d channels", errs.ErrInvalidArgument, rec.NumChannels())
	}

	dtype := cfg.dtype
	if dtype == format.DTypeInvalid {
		dtype = rec.DType()
	}
	dst, err := encoding.NewSampleCodec(dtype, cfg.engine)
	if err != nil {
		return nil, err
	}

	if !cfg.overwrite {
		for _, p := range paths {
			if _, err := os.Lstat(p); err == nil {
				return nil, fmt.Errorf("%w: %s", errs.ErrFileExists, p)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	res := &WriteResult{
		Paths:      append([]string(nil), paths...),
		NumSamples: make([]int, numSegments),
		Checksums:  make([]uint64, numSegments),
		DType:      dtype,
		TimeAxis:   cfg.timeAxis,
		ByteOrder:  cfg.engine,
		LossyCast:  encoding.IsLossyCast(rec.DType(), dtype),
	}
	if res.LossyCast {
		cfg.logger.Warn("lossy dtype cast", "from", rec.DType().String(), "to", dtype.String())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for seg, path := range paths {
		g.Go(func() error {
			w := segmentWriter{rec: rec, segment: seg, path: path, dst: dst, cfg: cfg}
			n, sum, err := w.run(gctx)
			if err != nil {
				return fmt.Errorf("write segment %d: %w", seg, err)
			}
			res.NumSamples[seg] = n
			res.Checksums[seg] = sum

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

// segmentWriter copies one source segment into one file. It owns the file
// exclusively.
type segmentWriter struct {
	rec     recording.Recording
	segment int
	path    string
	dst     encoding.SampleCodec
	cfg     *Config
}

func (w *segmentWriter) run(ctx context.Context) (int, uint64, error) {
	numSamples, err := w.rec.NumSamples(w.segment)
	if err != nil {
		return 0, 0, err
	}

	f, err := w.create()
	if err != nil {
		return 0, 0, err
	}

	w.cfg.logger.Debug("writing segment", "segment", w.segment, "path", w.path,
		"num_samples", numSamples, "time_axis", w.cfg.timeAxis.String())

	sum, err := w.copyChunks(ctx, f, numSamples)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && f.Name() != w.path {
		err = os.Rename(f.Name(), w.path)
	}
	if err != nil {
		if f.Name() != w.path {
			_ = os.Remove(f.Name())
		}

		return 0, 0, err
	}

	w.cfg.logger.Debug("wrote segment", "segment", w.segment, "path", w.path)

	return numSamples, sum, nil
}

// create opens the file the segment is written to. New targets are created
// in place. An existing target is replaced by renaming a sibling temp file
// over it once complete, so a source that maps the old file keeps reading
// its original bytes.
func (w *segmentWriter) create() (*os.File, error) {
	if !w.cfg.overwrite {
		f, err := os.OpenFile(w.path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileExists, w.path)
		}

		return f, err
	}

	f, err := os.CreateTemp(filepath.Dir(w.path), "."+filepath.Base(w.path)+".*.tmp")
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

func (w *segmentWriter) copyChunks(ctx context.Context, f *os.File, numSamples int) (uint64, error) {
	nc := w.rec.NumChannels()
	size := w.dst.Size()
	chunk := w.cfg.chunkSamples(nc * size)
	channelMajor := w.cfg.timeAxis == format.ChannelMajor

	if channelMajor {
		if err := f.Truncate(int64(numSamples) * int64(nc) * int64(size)); err != nil {
			return 0, err
		}
	}

	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)
	var column *pool.ByteBuffer
	if channelMajor {
		column = pool.GetChunkBuffer()
		defer pool.PutChunkBuffer(column)
	}
	digest := hash.NewDigest()

	for start := 0; start < numSamples; start += chunk {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		end := min(start+chunk, numSamples)

		tr, err := w.rec.Traces(w.segment, start, end, nil)
		if err != nil {
			return 0, err
		}
		if tr.NumSamples != end-start || tr.NumChannels != nc {
			return 0, fmt.Errorf("%w: source returned %dx%d traces for %dx%d request",
				errs.ErrDimensionMismatch, tr.NumSamples, tr.NumChannels, end-start, nc)
		}

		out := buf.Resize(tr.Len() * size)
		if err := encoding.Transcode(out, w.dst, tr.Data, tr.Codec(), tr.Len()); err != nil {
			return 0, err
		}

		if !channelMajor {
			if _, err := f.Write(out); err != nil {
				return 0, err
			}
			_, _ = digest.Write(out)

			continue
		}

		n := end - start
		col := column.Resize(n * size)
		for c := range nc {
			for s := range n {
				src := (s*nc + c) * size
				copy(col[s*size:(s+1)*size], out[src:src+size])
			}
			off := (int64(c)*int64(numSamples) + int64(start)) * int64(size)
			if _, err := f.WriteAt(col, off); err != nil {
				return 0, err
			}
		}
	}

	if channelMajor {
		// channels are interleaved across chunks, so hash the finished file
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return 0, err
		}
		if _, err := io.Copy(digest, f); err != nil {
			return 0, err
		}
	}

	return digest.Sum64(), nil
}
