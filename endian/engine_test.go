package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	result := CheckEndianness()

	// Verify the result against an independently probed value.
	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	switch testBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, result, "CheckEndianness() should return BigEndian")
	case 0x02:
		require.Equal(binary.LittleEndian, result, "CheckEndianness() should return LittleEndian")
	default:
		require.Failf("Unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestCheckEndiannessConsistency(t *testing.T) {
	first := CheckEndianness()
	for i := range 100 {
		result := CheckEndianness()
		if result != first {
			t.Errorf("CheckEndianness() returned inconsistent results: first=%v, iteration %d=%v", first, i, result)
		}
	}
}

func TestIsNativeLittleEndian(t *testing.T) {
	result := IsNativeLittleEndian()
	expected := CheckEndianness() == binary.LittleEndian
	require.Equal(t, expected, result)

	for range 10 {
		require.Equal(t, result, IsNativeLittleEndian())
	}
}

func TestGetNativeEngine(t *testing.T) {
	engine := GetNativeEngine()
	require.Implements(t, (*EndianEngine)(nil), engine)

	if IsNativeLittleEndian() {
		require.Equal(t, binary.LittleEndian, engine)
	} else {
		require.Equal(t, binary.BigEndian, engine)
	}
}

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.LittleEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x02), bytes[0], "Little endian should put LSB first")
	require.Equal(t, byte(0x01), bytes[1], "Little endian should put MSB second")
	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestGetBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.BigEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x01), bytes[0], "Big endian should put MSB first")
	require.Equal(t, byte(0x02), bytes[1], "Big endian should put LSB second")
	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestEnginesRoundTrip(t *testing.T) {
	littleEngine := GetLittleEndianEngine()
	bigEngine := GetBigEndianEngine()

	var testUint64 uint64 = 0x0102030405060708
	littleBytes := make([]byte, 8)
	bigBytes := make([]byte, 8)

	littleEngine.PutUint64(littleBytes, testUint64)
	bigEngine.PutUint64(bigBytes, testUint64)

	require.NotEqual(t, littleBytes, bigBytes, "byte representations should differ between engines")
	require.Equal(t, testUint64, littleEngine.Uint64(littleBytes))
	require.Equal(t, testUint64, bigEngine.Uint64(bigBytes))
}
