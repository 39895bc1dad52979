package section

import (
	"fmt"
	"math"

	"github.com/arloliu/ephys/endian"
	"github.com/arloliu/ephys/errs"
	"github.com/arloliu/ephys/internal/hash"
)

// ChannelEntry describes one channel in the channel table.
//
// Entry layout:
//
//	Bytes  | Field    | Type    | Description
//	-------|----------|---------|------------------------------
//	0-7    | IDHash   | uint64  | xxHash64 of the channel id
//	8-15   | Gain     | float64 | gain_to_uV (1 when absent)
//	16-23  | Offset   | float64 | offset_to_uV (0 when absent)
//	24-25  | IDLength | uint16  | byte length of the id
//	26-... | ID       | bytes   | UTF-8 channel id
type ChannelEntry struct {
	ID     string
	Gain   float64
	Offset float64
}

// Size returns the encoded byte size of the entry.
func (e ChannelEntry) Size() int {
	return ChannelEntryFixed + len(e.ID)
}

// ChannelTableSize returns the encoded byte size of a whole table.
func ChannelTableSize(entries []ChannelEntry) int {
	size := 0
	for _, e := range entries {
		size += e.Size()
	}

	return size
}

// AppendChannelTable appends the encoded table to dst.
func AppendChannelTable(dst []byte, entries []ChannelEntry, engine endian.EndianEngine) ([]byte, error) {
	for i, e := range entries {
		if len(e.ID) > MaxChannelIDLength {
			return dst, fmt.Errorf("%w: channel %d id is %d bytes", errs.ErrInvalidArgument, i, len(e.ID))
		}

		dst = engine.AppendUint64(dst, hash.ID(e.ID))
		dst = engine.AppendUint64(dst, math.Float64bits(e.Gain))
		dst = engine.AppendUint64(dst, math.Float64bits(e.Offset))
		dst = engine.AppendUint16(dst, uint16(len(e.ID))) //nolint: gosec
		dst = append(dst, e.ID...)
	}

	return dst, nil
}

// ParseChannelTable decodes count entries from data. Every id is checked
// against its stored hash.
func ParseChannelTable(data []byte, count int, engine endian.EndianEngine) ([]ChannelEntry, error) {
	if count < 0 || count > len(data)/ChannelEntryFixed {
		return nil, fmt.Errorf("%w: %d channels do not fit a %d byte channel table", errs.ErrInvalidHeader, count, len(data))
	}

	entries := make([]ChannelEntry, 0, count)
	pos := 0
	for i := range count {
		if len(data)-pos < ChannelEntryFixed {
			return nil, fmt.Errorf("%w: channel table truncated at entry %d", errs.ErrInvalidHeader, i)
		}

		idHash := engine.Uint64(data[pos : pos+8])
		gain := math.Float64frombits(engine.Uint64(data[pos+8 : pos+16]))
		offset := math.Float64frombits(engine.Uint64(data[pos+16 : pos+24]))
		idLen := int(engine.Uint16(data[pos+24 : pos+26]))
		pos += ChannelEntryFixed

		if len(data)-pos < idLen {
			return nil, fmt.Errorf("%w: channel table truncated at entry %d", errs.ErrInvalidHeader, i)
		}
		id := string(data[pos : pos+idLen])
		pos += idLen

		if hash.ID(id) != idHash {
			return nil, fmt.Errorf("%w: channel %d id %q", errs.ErrChecksumMismatch, i, id)
		}

		entries = append(entries, ChannelEntry{ID: id, Gain: gain, Offset: offset})
	}
	if pos != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes in channel table", errs.ErrInvalidHeader, len(data)-pos)
	}

	return entries, nil
}
