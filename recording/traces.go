package recording

import (
	"bytes"
	"fmt"

	"github.com/arloliu/ephys/encoding"
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

// Traces is a 2-D sample buffer with logical axes (time, channel), stored
// time-major: sample s of channel c lives at index s*NumChannels+c.
type Traces struct {
	DType       format.DType
	NumSamples  int
	NumChannels int
	// Engine is the byte order of Data.
	Engine endian.EndianEngine
	// Data holds NumSamples*NumChannels samples. It may alias a read-only
	// memory mapping; see Borrowed.
	Data []byte
	// Borrowed reports that Data aliases memory owned by the source
	// recording and must not be written to.
	Borrowed bool
}

// NewTraces allocates a zeroed buffer. A nil engine selects host byte order.
func NewTraces(dtype format.DType, numSamples, numChannels int, engine endian.EndianEngine) (*Traces, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidDType, dtype)
	}
	if numSamples < 0 || numChannels < 0 {
		return nil, fmt.Errorf("%w: negative traces shape (%d, %d)", errs.ErrInvalidArgument, numSamples, numChannels)
	}
	if engine == nil {
		engine = endian.GetNativeEngine()
	}

	return &Traces{
		DType:       dtype,
		NumSamples:  numSamples,
		NumChannels: numChannels,
		Engine:      engine,
		Data:        make([]byte, numSamples*numChannels*dtype.Size()),
	}, nil
}

// Codec returns the sample codec for Data.
func (t *Traces) Codec() encoding.SampleCodec {
	c, _ := encoding.NewSampleCodec(t.DType, t.Engine)
	return c
}

// Len returns the number of samples in the buffer.
func (t *Traces) Len() int {
	return t.NumSamples * t.NumChannels
}

// FrameSize returns the byte size of one time step.
func (t *Traces) FrameSize() int {
	return t.NumChannels * t.DType.Size()
}

// Float64 returns the value of one sample.
func (t *Traces) Float64(sample, channel int) float64 {
	return t.Codec().Float64(t.Data, sample*t.NumChannels+channel)
}

// Int64 returns the value of one sample, truncating floats.
func (t *Traces) Int64(sample, channel int) int64 {
	return t.Codec().Int64(t.Data, sample*t.NumChannels+channel)
}

// Channel returns one channel as float64 values.
func (t *Traces) Channel(channel int) ([]float64, error) {
	if channel < 0 || channel >= t.NumChannels {
		return nil, &errs.IndexError{What: "channel", Value: channel, Limit: t.NumChannels}
	}

	codec := t.Codec()
	out := make([]float64, t.NumSamples)
	for s := range out {
		out[s] = codec.Float64(t.Data, s*t.NumChannels+channel)
	}

	return out, nil
}

// Scaled converts the buffer to physical units: value*gain + offset per
// channel, time-major. gains and offsets must have one entry per channel
// in this buffer; nil offsets mean zero.
func (t *Traces) Scaled(gains, offsets []float64) ([]float64, error) {
	if len(gains) != t.NumChannels {
		return nil, fmt.Errorf("%w: %d gains for %d channels", errs.ErrPropertyLength, len(gains), t.NumChannels)
	}
	if offsets != nil && len(offsets) != t.NumChannels {
		return nil, fmt.Errorf("%w: %d offsets for %d channels", errs.ErrPropertyLength, len(offsets), t.NumChannels)
	}

	codec := t.Codec()
	out := make([]float64, t.Len())
	for i := range out {
		c := i % t.NumChannels
		v := codec.Float64(t.Data, i) * gains[c]
		if offsets != nil {
			v += offsets[c]
		}
		out[i] = v
	}

	return out, nil
}

// Clone returns an owned copy of the buffer.
func (t *Traces) Clone() *Traces {
	c := *t
	c.Data = bytes.Clone(t.Data)
	if c.Data == nil {
		c.Data = []byte{}
	}
	c.Borrowed = false

	return &c
}

// Equal reports whether two buffers have the same dtype, shape and sample
// values, bit for bit, regardless of their byte order.
func (t *Traces) Equal(o *Traces) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.DType != o.DType || t.NumSamples != o.NumSamples || t.NumChannels != o.NumChannels {
		return false
	}
	if t.Engine == o.Engine || t.DType.Size() == 1 {
		return bytes.Equal(t.Data, o.Data)
	}

	ours, theirs := t.Codec(), o.Codec()
	for i := range t.Len() {
		if ours.Bits(t.Data, i) != theirs.Bits(o.Data, i) {
			return false
		}
	}

	return true
}

// As returns the buffer as a typed slice. The result aliases Data when the
// byte order is native and the buffer is aligned, otherwise it is a copy.
func As[T encoding.Sample](t *Traces) ([]T, error) {
	if want := encoding.DTypeOf[T](); want != t.DType {
		return nil, fmt.Errorf("%w: traces are %s, requested %s", errs.ErrInvalidDType, t.DType, want)
	}
	if t.Codec().IsNative() {
		if view, ok := encoding.View[T](t.Data); ok {
			return view, nil
		}
	}

	return encoding.Decode[T](t.Data, t.Engine)
}
