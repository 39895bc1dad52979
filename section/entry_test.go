package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
)

func TestSegmentEntry_RoundTrip(t *testing.T) {
	engines := []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()}
	for _, engine := range engines {
		e := SegmentEntry{NumSamples: 1 << 40, FirstChunk: 7, ChunkCount: 3}
		b := make([]byte, SegmentEntrySize)
		require.NoError(t, e.WriteToSlice(b, engine))

		parsed, err := ParseSegmentEntry(b, engine)
		require.NoError(t, err)
		require.Equal(t, e, parsed)
	}

	e := SegmentEntry{}
	require.ErrorIs(t, e.WriteToSlice(make([]byte, 8), endian.GetLittleEndianEngine()), errs.ErrInvalidIndexEntrySize)
	_, err := ParseSegmentEntry(make([]byte, 15), endian.GetLittleEndianEngine())
	require.ErrorIs(t, err, errs.ErrInvalidIndexEntrySize)
}

func TestChunkEntry_RoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	e := ChunkEntry{Offset: 4096, Size: 1234, NumSamples: 1000, Checksum: 0xDEADBEEFCAFEF00D}

	b := e.Bytes(engine)
	require.Len(t, b, ChunkEntrySize)
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x10, 0}, b[0:8])

	parsed, err := ParseChunkEntry(b, engine)
	require.NoError(t, err)
	require.Equal(t, e, parsed)

	_, err = ParseChunkEntry(b[:20], engine)
	require.ErrorIs(t, err, errs.ErrInvalidIndexEntrySize)
}
