// Package encoding converts between raw sample bytes and numeric values.
//
// Every supported format.DType is a fixed-width integer or IEEE 754 float
// stored in a configurable byte order. A SampleCodec reads and writes single
// samples of one dtype and byte order; Transcode converts whole buffers
// between dtypes and byte orders, which is how the binary writer casts a
// recording to a different on-disk dtype.
//
// # Zero-copy views
//
// When a buffer is in host byte order and suitably aligned, View returns a
// typed slice that aliases the bytes, so memory-mapped traces are read
// without a copy:
//
//	samples, ok := encoding.View[int16](traces.Data)
//	if !ok {
//	    samples, _ = encoding.Decode[int16](traces.Data, engine)
//	}
//
// # Cast semantics
//
// Casts follow Go conversion rules: float to integer truncates toward zero,
// integer narrowing keeps the low-order bits. IsLossyCast reports whether a
// dtype pair can lose information so callers can warn before writing.
package encoding
