package section

const (
	// Bit masks
	GainsMask        = 0x0001 // Mask for channel gains bit (bit 0)
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000C // Mask for reserved bits (bits 2-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicArchiveV1Opt = 0xEC10 // MagicArchiveV1Opt is the version 1 magic number of the archive format.
)

// offset and section sizes in the archive file
const (
	HeaderSize         = 64         // fixed header size in bytes
	SegmentEntrySize   = 16         // fixed segment table entry size in bytes
	ChunkEntrySize     = 24         // fixed chunk index entry size in bytes
	ChannelEntryFixed  = 26         // fixed part of a channel table entry (hash, gain, offset, length)
	ChannelTableOffset = HeaderSize // the channel table always follows the header
	MaxChannelIDLength = 0xFFFF     // channel ids are length prefixed with a uint16
)
