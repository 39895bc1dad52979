// Package section defines the low-level binary structures of the ephys
// archive format.
//
// An archive stores a whole multi-segment recording in one file. Samples are
// cut into chunks of ChunkSize samples (all channels, time-major), each
// chunk is compressed on its own and indexed, so a reader decodes only the
// chunks that overlap a request.
//
// # Archive Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (64 bytes, fixed)                                │
//	│  - Flag (4 bytes): magic, byte order, dtype, codec      │
//	│  - Shape: channels, segments, chunk size, chunk count   │
//	│  - Sampling frequency                                   │
//	│  - Section offsets                                      │
//	├─────────────────────────────────────────────────────────┤
//	│ Channel Table (variable)                                │
//	│  - One entry per channel: id hash, gain, offset, id     │
//	├─────────────────────────────────────────────────────────┤
//	│ Segment Table (NumSegments × 16 bytes)                  │
//	│  - NumSamples, first chunk, chunk count                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Chunk Payloads (variable)                               │
//	│  - Compressed time-major samples                        │
//	├─────────────────────────────────────────────────────────┤
//	│ Chunk Index (ChunkCount × 24 bytes)                     │
//	│  - Offset, compressed size, samples, xxHash64           │
//	└─────────────────────────────────────────────────────────┘
//
// The chunk index follows the payloads because compressed sizes are only
// known once a chunk is written; the header is rewritten last with the final
// offsets.
//
// # Header Format
//
//	Bytes  | Field              | Type    | Description
//	-------|--------------------|---------|---------------------------------
//	0-3    | Flag               | uint32  | Options, dtype, compression
//	4-7    | NumChannels        | uint32  | Channels per frame
//	8-15   | SamplingFrequency  | float64 | Hz, IEEE 754 bits
//	16-19  | NumSegments        | uint32  | Segment table length
//	20-23  | ChunkSize          | uint32  | Samples per full chunk
//	24-27  | ChunkCount         | uint32  | Chunk index length
//	28-31  | ChannelTableSize   | uint32  | Channel table byte length
//	32-39  | ChannelTableOffset | uint64  | Byte offset of the channel table
//	40-47  | SegmentTableOffset | uint64  | Byte offset of the segment table
//	48-55  | PayloadOffset      | uint64  | Byte offset of the first chunk
//	56-63  | IndexOffset        | uint64  | Byte offset of the chunk index
//
// # Flag Format
//
//	Byte 0-1 (Options, 16 bits, always little-endian):
//	  Bit 0: Channel gains present (0=absent, 1=present)
//	  Bit 1: Endianness (0=little-endian, 1=big-endian)
//	  Bits 2-3: Reserved (must be 0)
//	  Bits 4-15: Magic number (0xEC10 for archive v1)
//
//	Byte 2: sample dtype (format.DType)
//	Byte 3: chunk compression (format.CompressionType)
//
// The endianness bit applies to every other multi-byte field of the file,
// including the samples inside decoded chunks.
//
// # Index Entry Formats
//
// SegmentEntry (16 bytes):
//
//	Bytes  | Field      | Type   | Description
//	-------|------------|--------|----------------------------------
//	0-7    | NumSamples | uint64 | Samples in the segment
//	8-11   | FirstChunk | uint32 | Index of the segment's first chunk
//	12-15  | ChunkCount | uint32 | Chunks in the segment
//
// ChunkEntry (24 bytes):
//
//	Bytes  | Field      | Type   | Description
//	-------|------------|--------|----------------------------------
//	0-7    | Offset     | uint64 | Absolute byte offset of the payload
//	8-11   | Size       | uint32 | Compressed payload size
//	12-15  | NumSamples | uint32 | Samples in the chunk
//	16-23  | Checksum   | uint64 | xxHash64 of the decoded payload
package section
