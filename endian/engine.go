// Package endian provides the byte order engines used to encode and decode
// sample files and archive sections.
//
// Raw recordings are written in the host byte order unless a caller asks for
// an explicit order, so the package exposes the native engine next to the
// fixed little and big endian engines:
//
//	engine := endian.GetNativeEngine()
//	if endian.CompareNativeEndian(engine) {
//	    // samples can be viewed in place
//	}
//
// All functions in this package are safe for concurrent use. The returned
// engines are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// native is binary.LittleEndian or binary.BigEndian, whichever the host
// uses. binary.NativeEndian itself does not compare equal to either.
var native = detectNative()

func detectNative() EndianEngine {
	if binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 0x0100 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeBigEndian reports whether the host stores the most significant
// byte first.
func IsNativeBigEndian() bool {
	return native == binary.BigEndian
}

// CompareNativeEndian reports whether engine matches the host byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == native
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	return native
}

// ParseByteOrder maps "little", "big" and "native" (or empty) to an engine.
// The numpy byte order characters "<", ">" and "=" are accepted as well.
func ParseByteOrder(s string) (EndianEngine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "=":
		return native, nil
	case "little", "le", "<":
		return binary.LittleEndian, nil
	case "big", "be", ">":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order: %q", s)
	}
}

// Name returns "little" or "big" for the given engine.
func Name(engine EndianEngine) string {
	if engine == binary.BigEndian {
		return "big"
	}

	return "little"
}
