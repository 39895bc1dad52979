package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/arloliu/ephys/archive"
	"github.com/arloliu/ephys/binaryrec"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/format"
	"github.com/arloliu/ephys/recording"
	"github.com/arloliu/ephys/section"
)

// source is an opened input of any kind.
type source interface {
	recording.Recording
	recording.Closer
}

type inputKind int

const (
	inputRaw inputKind = iota
	inputFolder
	inputArchive
)

func (k inputKind) String() string {
	switch k {
	case inputFolder:
		return "binary folder"
	case inputArchive:
		return "archive"
	default:
		return "raw binary"
	}
}

// rawFlags describe raw segment files, which carry no header of their own.
type rawFlags struct {
	samplingFrequency float64
	numChannels       int
	dtype             string
	timeAxis          string
	fileOffset        int64
	byteOrder         string
	gain              float64
	offset            float64
	format            string
}

func (f *rawFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&f.samplingFrequency, "sampling-frequency", 0, "Sampling frequency in Hz of raw input files")
	flags.IntVar(&f.numChannels, "num-channels", 0, "Number of channels of raw input files")
	flags.StringVar(&f.dtype, "dtype", "int16", "Sample dtype of raw input files")
	flags.StringVar(&f.timeAxis, "time-axis", "time-major", "Layout of raw input files (time-major|channel-major)")
	flags.Int64Var(&f.fileOffset, "file-offset", 0, "Header bytes to skip in each raw input file")
	flags.StringVar(&f.byteOrder, "byte-order", "native", "Byte order of raw input files (little|big|native)")
	flags.Float64Var(&f.gain, "gain-to-uv", 0, "gain_to_uV of raw input files, 0 to leave unset")
	flags.Float64Var(&f.offset, "offset-to-uv", 0, "offset_to_uV of raw input files")
	flags.StringVar(&f.format, "format", "auto", "Input format (auto|raw|folder|archive)")
}

// kind resolves the input format. Auto detection reads a single raw file as
// raw whenever --num-channels describes it, even if its leading bytes look
// like an archive header.
func (f *rawFlags) kind(paths []string) (inputKind, error) {
	switch strings.ToLower(strings.TrimSpace(f.format)) {
	case "auto", "":
		kind, err := detectInput(paths)
		if kind == inputArchive && f.numChannels > 0 {
			return inputRaw, nil
		}

		return kind, err
	case "raw":
		return inputRaw, nil
	case "folder":
		return single(paths, inputFolder)
	case "archive":
		return single(paths, inputArchive)
	default:
		return inputRaw, fmt.Errorf("unknown input format: %q", f.format)
	}
}

func single(paths []string, kind inputKind) (inputKind, error) {
	if len(paths) != 1 {
		return kind, fmt.Errorf("%s input takes exactly one path, got %d", kind, len(paths))
	}

	return kind, nil
}

func (f *rawFlags) options() ([]binaryrec.Option, format.DType, error) {
	dtype, err := format.ParseDType(f.dtype)
	if err != nil {
		return nil, 0, err
	}
	axis, err := format.ParseTimeAxis(f.timeAxis)
	if err != nil {
		return nil, 0, err
	}
	engine, err := endian.ParseByteOrder(f.byteOrder)
	if err != nil {
		return nil, 0, err
	}

	opts := []binaryrec.Option{
		binaryrec.WithTimeAxis(axis),
		binaryrec.WithFileOffset(f.fileOffset),
		binaryrec.WithByteOrder(engine),
	}
	if f.gain != 0 {
		opts = append(opts, binaryrec.WithGainToUV(f.gain), binaryrec.WithOffsetToUV(f.offset))
	}

	return opts, dtype, nil
}

// expandInputs resolves glob patterns. Literal paths keep their order;
// the matches of one pattern are sorted.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !hasMeta(arg) {
			paths = append(paths, arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matches no files", arg)
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}

	return paths, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// detectInput tells folders and archives from raw files.
func detectInput(paths []string) (inputKind, error) {
	if len(paths) != 1 {
		return inputRaw, nil
	}

	fi, err := os.Stat(paths[0])
	if err != nil {
		return inputRaw, err
	}
	if fi.IsDir() {
		return inputFolder, nil
	}

	f, err := os.Open(paths[0])
	if err != nil {
		return inputRaw, err
	}
	defer f.Close()

	header := make([]byte, section.HeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return inputRaw, nil
		}

		return inputRaw, err
	}
	if _, err := section.ParseArchiveHeader(header); err == nil {
		return inputArchive, nil
	}

	return inputRaw, nil
}

// openInput opens a binary folder, an archive or a list of raw segment files.
func openInput(args []string, raw *rawFlags) (source, inputKind, error) {
	paths, err := expandInputs(args)
	if err != nil {
		return nil, inputRaw, err
	}
	if len(paths) == 0 {
		return nil, inputRaw, errors.New("no input files")
	}

	kind, err := raw.kind(paths)
	if err != nil {
		return nil, kind, err
	}

	logger := slog.Default()
	switch kind {
	case inputFolder:
		rec, err := binaryrec.OpenFolder(paths[0], binaryrec.WithLogger(logger))
		if err != nil {
			return nil, kind, err
		}

		return rec, kind, nil
	case inputArchive:
		rec, err := archive.Open(paths[0], archive.WithLogger(logger))
		if err != nil {
			return nil, kind, err
		}

		return rec, kind, nil
	}

	if raw.samplingFrequency <= 0 || raw.numChannels <= 0 {
		return nil, kind, errors.New("raw input needs --sampling-frequency and --num-channels")
	}
	opts, dtype, err := raw.options()
	if err != nil {
		return nil, kind, err
	}
	opts = append(opts, binaryrec.WithLogger(logger))

	for _, p := range paths {
		logger.Debug("raw segment", "path", filepath.Clean(p))
	}
	rec, err := binaryrec.Open(paths, raw.samplingFrequency, raw.numChannels, dtype, opts...)
	if err != nil {
		return nil, kind, err
	}

	return rec, kind, nil
}
