// Package endian provides byte order utilities for the binary surfaces of the
// ragged store.
//
// Archive files are written little-endian regardless of host. The flat file
// triple produced by the memmap package is raw native-endian memory, so
// readers need to know the host byte order to decide whether a spilled file
// can be consumed on this machine.
//
// EndianEngine combines the ByteOrder and AppendByteOrder interfaces from
// encoding/binary, so a single value serves both fixed-offset writes and
// append-style encoding:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, offset)
//
// All functions and returned engines are immutable, stateless and safe for
// concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface. It is satisfied by binary.LittleEndian and
// binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine used by the archive
// format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host byte order. Raw flat
// files are written and read with this engine.
func GetNativeEngine() EndianEngine {
	if IsNativeLittleEndian() {
		return binary.LittleEndian
	}

	return binary.BigEndian
}
