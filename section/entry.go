package section

import (
	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
)

// SegmentEntry records one segment of the archive. Its chunks are the
// ChunkCount consecutive index entries starting at FirstChunk.
type SegmentEntry struct {
	// NumSamples is the number of samples in the segment.
	NumSamples uint64 // 8 bytes, offset 0-7
	// FirstChunk is the chunk index position of the first chunk.
	FirstChunk uint32 // 4 bytes, offset 8-11
	// ChunkCount is the number of chunks of the segment.
	ChunkCount uint32 // 4 bytes, offset 12-15
}

// WriteToSlice writes the entry to a byte slice of at least 16 bytes.
func (e *SegmentEntry) WriteToSlice(b []byte, engine endian.EndianEngine) error {
	if len(b) < SegmentEntrySize {
		return errs.ErrInvalidIndexEntrySize
	}

	engine.PutUint64(b[0:8], e.NumSamples)
	engine.PutUint32(b[8:12], e.FirstChunk)
	engine.PutUint32(b[12:16], e.ChunkCount)

	return nil
}

// ParseSegmentEntry parses a segment table entry.
func ParseSegmentEntry(data []byte, engine endian.EndianEngine) (SegmentEntry, error) {
	if len(data) < SegmentEntrySize {
		return SegmentEntry{}, errs.ErrInvalidIndexEntrySize
	}

	return SegmentEntry{
		NumSamples: engine.Uint64(data[0:8]),
		FirstChunk: engine.Uint32(data[8:12]),
		ChunkCount: engine.Uint32(data[12:16]),
	}, nil
}

// ChunkEntry locates one compressed chunk.
//
// Example with a 2-channel int16 segment of 2500 samples and ChunkSize 1000:
//
//	Chunk 0: 1000 samples → Offset=PayloadOffset,        decoded size 4000
//	Chunk 1: 1000 samples → Offset=Chunk0.Offset+Size0,  decoded size 4000
//	Chunk 2:  500 samples → Offset=Chunk1.Offset+Size1,  decoded size 2000
type ChunkEntry struct {
	// Offset is the absolute byte offset of the compressed payload.
	Offset uint64 // 8 bytes, offset 0-7
	// Size is the compressed payload size in bytes.
	Size uint32 // 4 bytes, offset 8-11
	// NumSamples is the number of samples in the chunk.
	NumSamples uint32 // 4 bytes, offset 12-15
	// Checksum is the xxHash64 of the decoded payload.
	Checksum uint64 // 8 bytes, offset 16-23
}

// Bytes returns the entry encoded with the given engine.
func (e *ChunkEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [ChunkEntrySize]byte
	_ = e.WriteToSlice(b[:], engine)

	return b[:]
}

// WriteToSlice writes the entry to a byte slice of at least 24 bytes.
func (e *ChunkEntry) WriteToSlice(b []byte, engine endian.EndianEngine) error {
	if len(b) < ChunkEntrySize {
		return errs.ErrInvalidIndexEntrySize
	}

	engine.PutUint64(b[0:8], e.Offset)
	engine.PutUint32(b[8:12], e.Size)
	engine.PutUint32(b[12:16], e.NumSamples)
	engine.PutUint64(b[16:24], e.Checksum)

	return nil
}

// ParseChunkEntry parses a chunk index entry.
func ParseChunkEntry(data []byte, engine endian.EndianEngine) (ChunkEntry, error) {
	if len(data) < ChunkEntrySize {
		return ChunkEntry{}, errs.ErrInvalidIndexEntrySize
	}

	return ChunkEntry{
		Offset:     engine.Uint64(data[0:8]),
		Size:       engine.Uint32(data[8:12]),
		NumSamples: engine.Uint32(data[12:16]),
		Checksum:   engine.Uint64(data[16:24]),
	}, nil
}
