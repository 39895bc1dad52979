package recording

import (
	"github.com/arloliu/ephys/errs"
)

// CheckSegment validates a segment index.
func CheckSegment(segment, numSegments int) error {
	if segment < 0 || segment >= numSegments {
		return &errs.IndexError{What: "segment", Value: segment, Limit: numSegments}
	}

	return nil
}

// CheckRange validates a [start, end) sample range and a channel subset
// against a segment shape. Out of range values are never clipped.
func CheckRange(numSamples, numChannels, start, end int, channels []int) error {
	if start < 0 || start > numSamples {
		return &errs.IndexError{What: "start sample", Value: start, Limit: numSamples}
	}
	if end < start || end > numSamples {
		return &errs.IndexError{What: "end sample", Value: end, Limit: numSamples}
	}
	for _, c := range channels {
		if c < 0 || c >= numChannels {
			return &errs.IndexError{What: "channel", Value: c, Limit: numChannels}
		}
	}

	return nil
}

// IsAllChannels reports whether channels selects every channel in order,
// which allows a contiguous time-major read.
func IsAllChannels(channels []int, numChannels int) bool {
	if channels == nil {
		return true
	}
	if len(channels) != numChannels {
		return false
	}
	for i, c := range channels {
		if c != i {
			return false
		}
	}

	return true
}

// AllChannels returns [0, 1, ..., n-1].
func AllChannels(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}
