package binaryrec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/internal/hash"
	"github.com/arloliu/ephys/recording"
)

// InfoFile is the name of the folder description written by WriteFolder.
const InfoFile = "binary.yaml"

// SegmentFileName returns the file name of segment i inside a folder.
func SegmentFileName(i int) string {
	return "traces_cached_seg" + strconv.Itoa(i) + ".raw"
}

// FolderInfo is the content of binary.yaml.
type FolderInfo struct {
	SamplingFrequency float64         `yaml:"sampling_frequency"`
	NumChannels       int             `yaml:"num_channels"`
	DType             format.DType    `yaml:"dtype"`
	TimeAxis          format.TimeAxis `yaml:"time_axis"`
	FileOffset        int64           `yaml:"file_offset"`
	ByteOrder         string          `yaml:"byte_order"`
	ChannelIDs        []string        `yaml:"channel_ids"`
	GainToUV          []float64       `yaml:"gain_to_uV,omitempty"`
	OffsetToUV        []float64       `yaml:"offset_to_uV,omitempty"`
	InterSampleShift  []float64       `yaml:"inter_sample_shift,omitempty"`
	Segments          []SegmentInfo   `yaml:"segments"`
}

// SegmentInfo describes one segment file of a folder.
type SegmentInfo struct {
	File       string `yaml:"file"`
	NumSamples int    `yaml:"num_samples"`
	// Checksum is the hex encoded xxHash64 of the whole file.
	Checksum string `yaml:"xxhash64"`
}

// WriteFolder writes rec into dir as one traces_cached_seg{i}.raw file per
// segment plus binary.yaml. Channel ids and the gain, offset and
// inter-sample shift properties of rec are carried over when it exposes
// them. The directory is created if needed.
func WriteFolder(ctx context.Context, rec recording.Recording, dir string, opts ...Option) (*FolderInfo, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	infoPath := filepath.Join(dir, InfoFile)
	if !cfg.overwrite {
		if _, err := os.Lstat(infoPath); err == nil {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileExists, infoPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	paths := make([]string, rec.NumSegments())
	for i := range paths {
		paths[i] = filepath.Join(dir, SegmentFileName(i))
	}

	res, err := write(ctx, rec, paths, cfg)
	if err != nil {
		return nil, err
	}

	info := &FolderInfo{
		SamplingFrequency: rec.SamplingFrequency(),
		NumChannels:       rec.NumChannels(),
		DType:             res.DType,
		TimeAxis:          res.TimeAxis,
		ByteOrder:         endian.Name(res.ByteOrder),
		Segments:          make([]SegmentInfo, len(paths)),
	}
	for i := range paths {
		info.Segments[i] = SegmentInfo{
			File:       SegmentFileName(i),
			NumSamples: res.NumSamples[i],
			Checksum:   formatChecksum(res.Checksums[i]),
		}
	}
	if cl, ok := rec.(recording.ChannelLister); ok {
		info.ChannelIDs = cl.ChannelIDs()
	}
	if ph, ok := rec.(recording.PropertyHolder); ok && ph.Properties() != nil {
		props := ph.Properties()
		info.GainToUV, _ = props.Gains()
		info.OffsetToUV, _ = props.Offsets()
		info.InterSampleShift, _ = props.InterSampleShift()
	}

	data, err := yaml.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", InfoFile, err)
	}
	if err := os.WriteFile(infoPath, data, 0o644); err != nil {
		return nil, err
	}
	cfg.logger.Debug("wrote folder", "dir", dir, "segments", len(paths))

	return info, nil
}

// ReadFolderInfo parses the binary.yaml of a folder.
func ReadFolderInfo(dir string) (*FolderInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, InfoFile))
	if err != nil {
		return nil, err
	}

	var info FolderInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrInvalidHeader, InfoFile, err)
	}
	if len(info.Segments) == 0 {
		return nil, fmt.Errorf("%w: %s lists no segments", errs.ErrInvalidHeader, InfoFile)
	}

	return &info, nil
}

// OpenFolder reopens a folder written by WriteFolder. The shape, layout and
// byte order come from binary.yaml; options may add a logger, verification
// or override channel metadata.
func OpenFolder(dir string, opts ...Option) (*Recording, error) {
	info, err := ReadFolderInfo(dir)
	if err != nil {
		return nil, err
	}

	engine, err := endian.ParseByteOrder(info.ByteOrder)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrInvalidHeader, InfoFile, err)
	}

	base := []Option{
		WithTimeAxis(info.TimeAxis),
		WithFileOffset(info.FileOffset),
		WithByteOrder(engine),
		WithChannelIDs(info.ChannelIDs),
		WithGainToUV(info.GainToUV...),
		WithOffsetToUV(info.OffsetToUV...),
	}
	cfg, err := newConfig(append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(info.Segments))
	for i, s := range info.Segments {
		paths[i] = filepath.Join(dir, s.File)
	}

	r, err := open(paths, info.SamplingFrequency, info.NumChannels, info.DType, cfg)
	if err != nil {
		return nil, err
	}

	if err := r.checkFolder(info, cfg.verify); err != nil {
		_ = r.Close()
		return nil, err
	}

	return r, nil
}

func (r *Recording) checkFolder(info *FolderInfo, verify bool) error {
	for i, s := range info.Segments {
		seg := r.segments[i]
		if seg.numSamples != s.NumSamples {
			return fmt.Errorf("%w: %s holds %d samples, %s records %d",
				errs.ErrDimensionMismatch, seg.path, seg.numSamples, InfoFile, s.NumSamples)
		}
		if !verify {
			continue
		}
		got := formatChecksum(hash.Checksum(seg.mapping.Bytes()))
		if got != s.Checksum {
			return fmt.Errorf("%w: %s is %s, %s records %s", errs.ErrChecksumMismatch, seg.path, got, InfoFile, s.Checksum)
		}
		r.logger.Debug("verified segment", "path", seg.path, "xxhash64", got)
	}

	if len(info.InterSampleShift) > 0 {
		if err := r.Properties().SetInterSampleShift(info.InterSampleShift); err != nil {
			return err
		}
	}

	return nil
}

// Verify re-hashes every segment file of a folder against binary.yaml.
func Verify(dir string, opts ...Option) error {
	r, err := OpenFolder(dir, append(opts, WithVerify(true))...)
	if err != nil {
		return err
	}

	return r.Close()
}

func formatChecksum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
