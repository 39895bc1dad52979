package compress

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/format"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"Zstd": NewZstdCompressor(),
		"S2":   NewS2Compressor(),
		"LZ4":  NewLZ4Compressor(),
	}
}

// sineChunk builds a time-major int16 chunk resembling band-passed neural data.
func sineChunk(samples, channels int) []byte {
	b := make([]byte, samples*channels*2)
	for s := range samples {
		for c := range channels {
			v := 800*math.Sin(float64(s)/7+float64(c)/3) + float64((s*31+c*17)%23)
			binary.LittleEndian.PutUint16(b[(s*channels+c)*2:], uint16(int16(v)))
		}
	}

	return b
}

func TestGetCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		require.Equal(t, ct, codec.Type())
	}

	_, err := GetCodec(format.CompressionType(0x9))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestStats(t *testing.T) {
	var s Stats
	require.Zero(t, s.CompressionRatio())
	require.Zero(t, s.SpaceSavings())

	s.Add(1000, 250)
	s.Add(1000, 250)
	require.InDelta(t, 0.25, s.CompressionRatio(), 1e-12)
	require.InDelta(t, 75.0, s.SpaceSavings(), 1e-12)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil, nil)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed, 0)
			require.NoError(t, err)
			require.Empty(t, decompressed)

			_, err = codec.Decompress(nil, 16)
			require.ErrorIs(t, err, errs.ErrCorruptPayload)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"single_byte", []byte{0x42}},
		{"one_frame", sineChunk(1, 384)},
		{"small_chunk", sineChunk(30, 3)},
		{"np_chunk", sineChunk(1024, 384)},
		{"repeated_pattern", bytes.Repeat([]byte{0x10, 0x00, 0xF0, 0xFF}, 4096)},
		{"zeros", make([]byte, 1<<20)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(nil, tc.data)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed, len(tc.data))
					require.NoError(t, err)
					require.True(t, bytes.Equal(tc.data, decompressed), "decompressed data must match original")
				})
			}
		})
	}
}

func TestAllCodecs_AppendsToDst(t *testing.T) {
	data := sineChunk(64, 8)
	prefix := []byte("HDR")

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			out, err := codec.Compress(append([]byte(nil), prefix...), data)
			require.NoError(t, err)
			require.Equal(t, prefix, out[:3])

			decompressed, err := codec.Decompress(out[3:], len(data))
			require.NoError(t, err)
			require.Equal(t, data, decompressed)
		})
	}
}

func TestAllCodecs_WrongSize(t *testing.T) {
	data := sineChunk(16, 4)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil, data)
			require.NoError(t, err)

			_, err = codec.Decompress(compressed, len(data)+2)
			require.ErrorIs(t, err, errs.ErrCorruptPayload)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{"random_bytes", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"text_as_compressed", []byte("this is not compressed data")},
		{"corrupted_header", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "NoOp" {
				t.Skip("NoOp codec only checks the length")
			}

			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data, 4096)
					require.ErrorIs(t, err, errs.ErrCorruptPayload)
				})
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 16
	data := sineChunk(256, 32)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errCh := make(chan error, numGoroutines)
			for range numGoroutines {
				wg.Add(1)
				go func() {
					defer wg.Done()
					compressed, err := codec.Compress(nil, data)
					if err != nil {
						errCh <- err
						return
					}
					out, err := codec.Decompress(compressed, len(data))
					if err != nil {
						errCh <- err
						return
					}
					if !bytes.Equal(out, data) {
						errCh <- errs.ErrCorruptPayload
					}
				}()
			}
			wg.Wait()
			close(errCh)
			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}
