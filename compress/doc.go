// Package compress provides the payload codecs of the ephys archive format.
//
// Archive chunks hold raw time-major samples, which compress well when
// neighbouring channels are correlated. Four codecs are available:
//
//   - None: stores the chunk as is.
//   - Zstd: best ratio, moderate speed. The pure Go klauspost/compress
//     implementation is used by default; building with the gozstd tag (and
//     cgo enabled) switches to the valyala/gozstd bindings of libzstd.
//   - S2: Snappy-compatible, fast with a fair ratio.
//   - LZ4: fastest decompression.
//
// Every chunk records its uncompressed size, so Decompress takes the
// expected size and fails with errs.ErrCorruptPayload when the decoded
// payload differs. That size also lets LZ4 decode into an exact buffer.
//
// Codecs are stateless values and safe for concurrent use; encoder and
// decoder state is pooled internally.
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	packed, err := codec.Compress(nil, chunk)
//	raw, err := codec.Decompress(packed, len(chunk))
package compress
