// Package errs defines the errors returned by the ephys packages.
//
// Sentinel errors are matched with errors.Is. Failures that carry data, such
// as a file whose size does not divide into whole frames, are returned as
// typed errors that also match their sentinel:
//
//	_, err := binaryrec.Open(paths, 30000, 384, format.Int16)
//	if errors.Is(err, errs.ErrDimensionMismatch) {
//	    var dm *errs.DimensionMismatchError
//	    errors.As(err, &dm)
//	}
//
// I/O errors from the operating system are wrapped, never replaced, so
// errors.Is(err, fs.ErrNotExist) keeps working.
package errs

import (
	"errors"
	"fmt"
)

// Construction and validation errors.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidDType      = errors.New("invalid dtype")
	ErrInvalidTimeAxis   = errors.New("invalid time axis")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrSegmentMismatch   = errors.New("segment count mismatch")
	ErrFileExists        = errors.New("file already exists")
	ErrMetadataNotFound  = errors.New("metadata file not found")
	ErrInvalidStreamID   = errors.New("invalid stream id")
	ErrProbeMismatch     = errors.New("probe does not fit recording")
	ErrPropertyLength    = errors.New("property length does not match channel count")
)

// Indexing errors.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Container errors.
var (
	ErrInvalidHeaderSize     = errors.New("invalid header size")
	ErrInvalidMagicNumber    = errors.New("invalid magic number")
	ErrInvalidHeader         = errors.New("invalid header")
	ErrInvalidIndexEntrySize = errors.New("invalid index entry size")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrCorruptPayload        = errors.New("corrupt compressed payload")
	ErrClosed                = errors.New("recording is closed")
)

// DimensionMismatchError reports a file whose payload is not a whole number
// of frames.
type DimensionMismatchError struct {
	Path      string
	Size      int64 // payload size in bytes, after the file offset
	FrameSize int   // num_channels * dtype size
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: %s has %d payload bytes, not a multiple of frame size %d",
		e.Path, e.Size, e.FrameSize)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// IndexError reports an out of range segment, sample or channel index.
type IndexError struct {
	What  string // "segment", "sample" or "channel"
	Value int
	Limit int // exclusive upper bound, or inclusive for sample end bounds
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of range: %s %d (limit %d)", e.What, e.Value, e.Limit)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }
