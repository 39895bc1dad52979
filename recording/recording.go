// Package recording defines the uniform in-memory API shared by every
// extractor: a multi-segment, multi-channel trace source with a per-channel
// property table.
//
// Concrete extractors (binaryrec, archive, spikeglx) embed *Base for the
// channel metadata and implement the trace accessors themselves. Writers
// depend only on the narrow Recording interface, so any source that can
// report its shape and hand out trace buffers can be persisted.
package recording

import (
	"github.com/arloliu/ephys/format"
)

// Recording is the capability set every trace source provides.
//
// A Recording is immutable once opened. Traces may alias memory-mapped file
// data, so callers that keep a buffer beyond the lifetime of the source must
// Clone it.
type Recording interface {
	// NumSegments returns the number of time-contiguous segments.
	NumSegments() int
	// NumChannels returns the channel count, shared by all segments.
	NumChannels() int
	// SamplingFrequency returns the sampling rate in Hz.
	SamplingFrequency() float64
	// DType returns the native sample dtype.
	DType() format.DType
	// NumSamples returns the sample count of one segment.
	NumSamples(segment int) (int, error)
	// Traces returns samples [start, end) of the given channels (nil means
	// all channels, in order) as a time-major buffer.
	Traces(segment, start, end int, channels []int) (*Traces, error)
}

// Closer is implemented by recordings that hold open files or mappings.
type Closer interface {
	Close() error
}

// ChannelLister is implemented by recordings that name their channels.
type ChannelLister interface {
	ChannelIDs() []string
}

// PropertyHolder is implemented by recordings that carry per-channel properties.
type PropertyHolder interface {
	Properties() *Properties
}

// TotalSamples sums the sample counts of all segments.
func TotalSamples(rec Recording) (int, error) {
	total := 0
	for seg := range rec.NumSegments() {
		n, err := rec.NumSamples(seg)
		if err != nil {
			return 0, err
		}
		total += n
	}

	return total, nil
}

// Duration returns the length of one segment in seconds.
func Duration(rec Recording, segment int) (float64, error) {
	n, err := rec.NumSamples(segment)
	if err != nil {
		return 0, err
	}

	return float64(n) / rec.SamplingFrequency(), nil
}
