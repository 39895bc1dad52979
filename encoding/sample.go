package encoding

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

// Sample is the set of Go types that back a format.DType.
type Sample interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// DTypeOf returns the dtype matching T.
func DTypeOf[T Sample]() format.DType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return format.Int8
	case uint8:
		return format.Uint8
	case int16:
		return format.Int16
	case uint16:
		return format.Uint16
	case int32:
		return format.Int32
	case uint32:
		return format.Uint32
	case int64:
		return format.Int64
	case uint64:
		return format.Uint64
	case float32:
		return format.Float32
	case float64:
		return format.Float64
	}

	// Named types with a supported underlying type fall back to the size and kind.
	switch unsafe.Sizeof(zero) {
	case 1:
		if T(0)-1 > 0 {
			return format.Uint8
		}

		return format.Int8
	case 2:
		if T(0)-1 > 0 {
			return format.Uint16
		}

		return format.Int16
	case 4:
		if T(1)/2 > 0 {
			return format.Float32
		}
		if T(0)-1 > 0 {
			return format.Uint32
		}

		return format.Int32
	default:
		if T(1)/2 > 0 {
			return format.Float64
		}
		if T(0)-1 > 0 {
			return format.Uint64
		}

		return format.Int64
	}
}

// SampleCodec reads and writes samples of a single dtype in a single byte order.
//
// Index arguments are sample indices, not byte offsets. SampleCodec is a small
// immutable value and safe for concurrent use.
type SampleCodec struct {
	dtype  format.DType
	size   int
	engine endian.EndianEngine
}

// NewSampleCodec creates a codec for dtype in the given byte order.
// A nil engine selects the host byte order.
func NewSampleCodec(dtype format.DType, engine endian.EndianEngine) (SampleCodec, error) {
	if !dtype.Valid() {
		return SampleCodec{}, fmt.Errorf("%w: %s", errs.ErrInvalidDType, dtype)
	}
	if engine == nil {
		engine = endian.GetNativeEngine()
	}

	return SampleCodec{dtype: dtype, size: dtype.Size(), engine: engine}, nil
}

// DType returns the codec dtype.
func (c SampleCodec) DType() format.DType { return c.dtype }

// Size returns the sample size in bytes.
func (c SampleCodec) Size() int { return c.size }

// Engine returns the codec byte order.
func (c SampleCodec) Engine() endian.EndianEngine { return c.engine }

// IsNative reports whether the codec byte order is the host byte order.
func (c SampleCodec) IsNative() bool {
	return c.size == 1 || endian.CompareNativeEndian(c.engine)
}

// bits returns the raw sample bits at index i, zero extended.
func (c SampleCodec) bits(b []byte, i int) uint64 {
	off := i * c.size
	switch c.size {
	case 1:
		return uint64(b[off])
	case 2:
		return uint64(c.engine.Uint16(b[off:]))
	case 4:
		return uint64(c.engine.Uint32(b[off:]))
	default:
		return c.engine.Uint64(b[off:])
	}
}

// Bits returns the encoded bits of sample i in host order, zero extended.
// Two samples of the same dtype are identical exactly when their bits are.
func (c SampleCodec) Bits(b []byte, i int) uint64 {
	return c.bits(b, i)
}

// putBits stores the low-order bits of v at sample index i.
func (c SampleCodec) putBits(b []byte, i int, v uint64) {
	off := i * c.size
	switch c.size {
	case 1:
		b[off] = byte(v)
	case 2:
		c.engine.PutUint16(b[off:], uint16(v))
	case 4:
		c.engine.PutUint32(b[off:], uint32(v))
	default:
		c.engine.PutUint64(b[off:], v)
	}
}

// Float64 returns sample i as a float64.
func (c SampleCodec) Float64(b []byte, i int) float64 {
	raw := c.bits(b, i)
	switch c.dtype {
	case format.Float32:
		return float64(math.Float32frombits(uint32(raw)))
	case format.Float64:
		return math.Float64frombits(raw)
	case format.Int8:
		return float64(int8(raw))
	case format.Int16:
		return float64(int16(raw))
	case format.Int32:
		return float64(int32(raw))
	case format.Int64:
		return float64(int64(raw))
	default:
		return float64(raw)
	}
}

// Int64 returns sample i as an int64. Floats are truncated toward zero.
func (c SampleCodec) Int64(b []byte, i int) int64 {
	raw := c.bits(b, i)
	switch c.dtype {
	case format.Float32, format.Float64:
		return int64(c.Float64(b, i))
	case format.Int8:
		return int64(int8(raw))
	case format.Int16:
		return int64(int16(raw))
	case format.Int32:
		return int64(int32(raw))
	default:
		return int64(raw)
	}
}

// Uint64 returns sample i as a uint64. Negative values wrap.
func (c SampleCodec) Uint64(b []byte, i int) uint64 {
	if c.dtype.IsFloat() {
		return floatToUint64(c.Float64(b, i))
	}
	if c.dtype.IsSigned() {
		return uint64(c.Int64(b, i))
	}

	return c.bits(b, i)
}

// PutFloat64 stores v at sample index i, converting to the codec dtype.
func (c SampleCodec) PutFloat64(b []byte, i int, v float64) {
	switch {
	case c.dtype == format.Float32:
		c.putBits(b, i, uint64(math.Float32bits(float32(v))))
	case c.dtype == format.Float64:
		c.putBits(b, i, math.Float64bits(v))
	case c.dtype.IsSigned():
		c.putBits(b, i, uint64(int64(v)))
	default:
		c.putBits(b, i, floatToUint64(v))
	}
}

// PutInt64 stores v at sample index i, converting to the codec dtype.
func (c SampleCodec) PutInt64(b []byte, i int, v int64) {
	if c.dtype.IsFloat() {
		c.PutFloat64(b, i, float64(v))
		return
	}
	c.putBits(b, i, uint64(v))
}

// PutUint64 stores v at sample index i, converting to the codec dtype.
func (c SampleCodec) PutUint64(b []byte, i int, v uint64) {
	if c.dtype.IsFloat() {
		c.PutFloat64(b, i, float64(v))
		return
	}
	c.putBits(b, i, v)
}

func floatToUint64(f float64) uint64 {
	if f < 0 {
		return uint64(int64(f))
	}

	return uint64(f)
}

// Transcode converts n samples from src (decoded with sc) into dst (encoded
// with dc). dst and src must not overlap unless the codecs are identical.
func Transcode(dst []byte, dc SampleCodec, src []byte, sc SampleCodec, n int) error {
	if len(src) < n*sc.size {
		return fmt.Errorf("%w: source holds %d bytes, need %d", errs.ErrInvalidArgument, len(src), n*sc.size)
	}
	if len(dst) < n*dc.size {
		return fmt.Errorf("%w: destination holds %d bytes, need %d", errs.ErrInvalidArgument, len(dst), n*dc.size)
	}

	if dc.dtype == sc.dtype {
		copy(dst[:n*dc.size], src[:n*sc.size])
		if dc.size > 1 && dc.engine != sc.engine {
			swapBytes(dst[:n*dc.size], dc.size)
		}

		return nil
	}

	switch {
	case dc.dtype.IsFloat() || sc.dtype.IsFloat():
		for i := range n {
			dc.PutFloat64(dst, i, sc.Float64(src, i))
		}
	case sc.dtype.IsSigned():
		for i := range n {
			dc.PutInt64(dst, i, sc.Int64(src, i))
		}
	default:
		for i := range n {
			dc.PutUint64(dst, i, sc.Uint64(src, i))
		}
	}

	return nil
}

// swapBytes reverses the byte order of every size-byte element in b.
func swapBytes(b []byte, size int) {
	for off := 0; off+size <= len(b); off += size {
		for i, j := off, off+size-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
	}
}

// mantissaBits is the number of integer bits a float dtype represents exactly.
func mantissaBits(d format.DType) int {
	if d == format.Float32 {
		return 24
	}

	return 53
}

// IsLossyCast reports whether converting samples from one dtype to another
// can change a value.
func IsLossyCast(from, to format.DType) bool {
	if from == to {
		return false
	}

	switch {
	case from.IsFloat() && to.IsFloat():
		return to.Size() < from.Size()
	case from.IsFloat():
		return true
	case to.IsFloat():
		bits := from.Size() * 8
		if from.IsSigned() {
			bits--
		}

		return bits > mantissaBits(to)
	case from.IsSigned() && to.IsUnsigned():
		return true
	case from.IsUnsigned() && to.IsSigned():
		return to.Size() <= from.Size()
	default:
		return to.Size() < from.Size()
	}
}

// View reinterprets data as a []T without copying. It returns false when
// the length is not a whole number of samples or the backing array is not
// aligned for T. The caller must ensure data is in host byte order.
func View[T Sample](data []byte) ([]T, bool) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(data)%size != 0 {
		return nil, false
	}
	if len(data) == 0 {
		return []T{}, true
	}
	if uintptr(unsafe.Pointer(&data[0]))%uintptr(unsafe.Alignof(zero)) != 0 {
		return nil, false
	}

	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/size), true
}

// Decode copies data, stored in the given byte order, into a new []T.
func Decode[T Sample](data []byte, engine endian.EndianEngine) ([]T, error) {
	codec, err := NewSampleCodec(DTypeOf[T](), engine)
	if err != nil {
		return nil, err
	}
	if len(data)%codec.size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %s size", errs.ErrInvalidArgument, len(data), codec.dtype)
	}

	n := len(data) / codec.size
	out := make([]T, n)
	if codec.IsNative() {
		if view, ok := View[T](data); ok {
			copy(out, view)
			return out, nil
		}
	}

	switch {
	case codec.dtype.IsFloat():
		for i := range n {
			out[i] = T(codec.Float64(data, i))
		}
	case codec.dtype.IsSigned():
		for i := range n {
			out[i] = T(codec.Int64(data, i))
		}
	default:
		for i := range n {
			out[i] = T(codec.Uint64(data, i))
		}
	}

	return out, nil
}

// Encode appends values to dst in the given byte order.
func Encode[T Sample](dst []byte, values []T, engine endian.EndianEngine) ([]byte, error) {
	codec, err := NewSampleCodec(DTypeOf[T](), engine)
	if err != nil {
		return nil, err
	}

	start := len(dst)
	dst = append(dst, make([]byte, len(values)*codec.size)...)
	out := dst[start:]
	switch {
	case codec.dtype.IsFloat():
		for i, v := range values {
			codec.PutFloat64(out, i, float64(v))
		}
	case codec.dtype.IsSigned():
		for i, v := range values {
			codec.PutInt64(out, i, int64(v))
		}
	default:
		for i, v := range values {
			codec.PutUint64(out, i, uint64(v))
		}
	}

	return dst, nil
}
