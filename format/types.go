package format

import (
	"fmt"
	"strings"
)

type (
	// DType is the fixed-width numeric element type of stored samples.
	DType uint8
	// TimeAxis selects the physical byte layout of a trace buffer.
	TimeAxis uint8
	// CompressionType identifies the codec applied to archive chunk payloads.
	CompressionType uint8
	// GroupMode controls how channels are grouped when a probe is attached.
	GroupMode uint8
)

const (
	DTypeInvalid DType = 0x0
	Int8         DType = 0x1 // Int8 is a signed 8-bit integer sample.
	Uint8        DType = 0x2 // Uint8 is an unsigned 8-bit integer sample.
	Int16        DType = 0x3 // Int16 is a signed 16-bit integer sample.
	Uint16       DType = 0x4 // Uint16 is an unsigned 16-bit integer sample.
	Int32        DType = 0x5 // Int32 is a signed 32-bit integer sample.
	Uint32       DType = 0x6 // Uint32 is an unsigned 32-bit integer sample.
	Int64        DType = 0x7 // Int64 is a signed 64-bit integer sample.
	Uint64       DType = 0x8 // Uint64 is an unsigned 64-bit integer sample.
	Float32      DType = 0x9 // Float32 is an IEEE 754 single precision sample.
	Float64      DType = 0xA // Float64 is an IEEE 754 double precision sample.
)

const (
	// TimeMajor stores one frame (all channels of one sample) after another,
	// so the channel index varies fastest.
	TimeMajor TimeAxis = 0
	// ChannelMajor stores every sample of channel 0, then channel 1, and so on,
	// so the time index varies fastest.
	ChannelMajor TimeAxis = 1
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

const (
	GroupNone    GroupMode = 0 // GroupNone puts every channel in group 0.
	GroupByShank GroupMode = 1 // GroupByShank groups channels by probe shank id.
)

var dtypeNames = map[DType]string{
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

// dtypeAliases maps numpy style short codes to dtypes.
var dtypeAliases = map[string]DType{
	"i1": Int8, "u1": Uint8,
	"i2": Int16, "u2": Uint16,
	"i4": Int32, "u4": Uint32,
	"i8": Int64, "u8": Uint64,
	"f4": Float32, "f8": Float64,
	"float": Float64, "double": Float64, "single": Float32, "short": Int16,
}

// Size returns the element size in bytes, or 0 for an invalid dtype.
func (d DType) Size() int {
	switch d {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether d is one of the supported dtypes.
func (d DType) Valid() bool {
	return d.Size() > 0
}

// IsFloat reports whether d is a floating point type.
func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// IsSigned reports whether d is a signed integer type.
func (d DType) IsSigned() bool {
	switch d {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// IsUnsigned reports whether d is an unsigned integer type.
func (d DType) IsUnsigned() bool {
	switch d {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	default:
		return false
	}
}

func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}

	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (d DType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid dtype: %d", uint8(d))
	}

	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DType) UnmarshalText(text []byte) error {
	parsed, err := ParseDType(string(text))
	if err != nil {
		return err
	}
	*d = parsed

	return nil
}

// ParseDType parses a dtype name such as "int16", "float32" or a numpy
// style code such as "<i2". A leading byte order character is ignored; the
// byte order of a file is configured separately.
func ParseDType(s string) (DType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimLeft(name, "<>=|")
	for d, n := range dtypeNames {
		if n == name {
			return d, nil
		}
	}
	if d, ok := dtypeAliases[name]; ok {
		return d, nil
	}

	return DTypeInvalid, fmt.Errorf("unknown dtype: %q", s)
}

func (a TimeAxis) String() string {
	switch a {
	case TimeMajor:
		return "time-major"
	case ChannelMajor:
		return "channel-major"
	default:
		return "Unknown"
	}
}

// Valid reports whether a is a known layout.
func (a TimeAxis) Valid() bool {
	return a == TimeMajor || a == ChannelMajor
}

// MarshalText implements encoding.TextMarshaler.
func (a TimeAxis) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid time axis: %d", uint8(a))
	}

	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *TimeAxis) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeAxis(string(text))
	if err != nil {
		return err
	}
	*a = parsed

	return nil
}

// ParseTimeAxis accepts "time-major", "channel-major" and the numeric axis
// names "0" and "1" used by array libraries.
func ParseTimeAxis(s string) (TimeAxis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time-major", "time_major", "0", "":
		return TimeMajor, nil
	case "channel-major", "channel_major", "1":
		return ChannelMajor, nil
	default:
		return 0, fmt.Errorf("unknown time axis: %q", s)
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression parses a codec name, case insensitive.
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", s)
	}
}

func (g GroupMode) String() string {
	switch g {
	case GroupNone:
		return "none"
	case GroupByShank:
		return "by_shank"
	default:
		return "Unknown"
	}
}
