// Package ephys reads, writes and converts multi-channel electrophysiology
// recordings.
//
// A recording is a set of time-contiguous segments sharing one channel
// count, sampling frequency and sample dtype. Every source implements
// recording.Recording, so any of them can be written with any writer.
//
// # Core Features
//
//   - Raw binary segment files with configurable dtype, time axis, byte order and header offset
//   - Zero-copy, memory-mapped reads where the file layout allows it
//   - Chunked, segment-parallel writers with dtype casts and xxHash64 checksums
//   - A self-describing binary folder (binary.yaml next to the segment files)
//   - A compressed single-file archive (None, Zstd, S2, LZ4) with per-chunk checksums
//   - Neuropixels inter-sample shift computation for SpikeGLX streams
//
// # Basic Usage
//
// Opening two raw int16 segment files of 384 channels at 30 kHz:
//
//	rec, err := ephys.OpenBinary([]string{"seg0.bin", "seg1.bin"}, 30000, 384, format.Int16)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rec.Close()
//
//	traces, _ := rec.Traces(0, 0, 30000, nil) // first second, all channels
//	values, _ := recording.As[int16](traces)
//
// Caching a recording as a folder and packing it into an archive:
//
//	_, err = ephys.WriteBinaryFolder(ctx, rec, "cache")
//	_, err = ephys.WriteArchive(ctx, rec, "rec.eph",
//	    archive.WithCompression(format.CompressionZstd),
//	)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the binaryrec,
// archive and neuropixels packages for the most common use cases. For
// fine-grained control, use those packages directly.
package ephys

import (
	"context"

	"github.com/arloliu/ephys/archive"
	"github.com/arloliu/ephys/binaryrec"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/neuropixels"
	"github.com/arloliu/ephys/recording"
)

// OpenBinary maps one raw file per segment as a recording.
//
// Parameters:
//   - paths: Segment files in segment order
//   - samplingFrequency: Sampling rate in Hz
//   - numChannels: Channels per frame
//   - dtype: Sample dtype of the files
//   - opts: binaryrec options (time axis, file offset, byte order, gains, ...)
//
// Returns:
//   - *binaryrec.Recording: The opened recording, to be closed by the caller
//   - error: A *errs.DimensionMismatchError if a file is not a whole number of frames,
//     the underlying *fs.PathError if a file cannot be opened
func OpenBinary(paths []string, samplingFrequency float64, numChannels int, dtype format.DType, opts ...binaryrec.Option) (*binaryrec.Recording, error) {
	return binaryrec.Open(paths, samplingFrequency, numChannels, dtype, opts...)
}

// WriteBinary writes every segment of rec to paths[segment] as raw samples.
//
// Example:
//
//	res, err := ephys.WriteBinary(ctx, rec, []string{"out0.raw", "out1.raw"},
//	    binaryrec.WithDType(format.Float32),
//	    binaryrec.WithTimeAxis(format.ChannelMajor),
//	)
func WriteBinary(ctx context.Context, rec recording.Recording, paths []string, opts ...binaryrec.Option) (*binaryrec.WriteResult, error) {
	return binaryrec.Write(ctx, rec, paths, opts...)
}

// OpenBinaryFolder reopens a folder written by WriteBinaryFolder.
func OpenBinaryFolder(dir string, opts ...binaryrec.Option) (*binaryrec.Recording, error) {
	return binaryrec.OpenFolder(dir, opts...)
}

// WriteBinaryFolder writes rec into dir as traces_cached_seg{i}.raw files
// plus a binary.yaml description.
func WriteBinaryFolder(ctx context.Context, rec recording.Recording, dir string, opts ...binaryrec.Option) (*binaryrec.FolderInfo, error) {
	return binaryrec.WriteFolder(ctx, rec, dir, opts...)
}

// OpenArchive opens a compressed archive as a recording.
func OpenArchive(path string, opts ...archive.Option) (*archive.Recording, error) {
	return archive.Open(path, opts...)
}

// WriteArchive stores rec in one compressed archive file.
func WriteArchive(ctx context.Context, rec recording.Recording, path string, opts ...archive.Option) (*archive.WriteResult, error) {
	return archive.Write(ctx, rec, path, opts...)
}

// SampleShifts returns the inter-sample shift of each channel of a
// Neuropixels stream, as a fraction of the sampling period.
//
// The probe type is the imDatPrb_type value of the meta file, as a number or
// string. Type 2 (Neuropixels 2.0) digitizes 16 channels per ADC; every other
// type, including unknown ones, uses 12.
//
// Example:
//
//	shifts, _ := ephys.SampleShifts(384, "0")
//	// shifts[0..11] = 0, 1/12, 2/12, ...; shifts[12] = 0 again
func SampleShifts(numChannels int, probeType any) ([]float64, error) {
	return neuropixels.SampleShifts(numChannels, neuropixels.ChannelsPerADC(probeType))
}
