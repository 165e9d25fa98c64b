// Package conv provides checked integer conversions and raw reinterpretation
// of byte slices as typed arrays.
//
// The reinterpret helpers view memory-mapped file contents as scalar slices
// without copying. They assume host byte order (the flat file triple is raw
// native-endian memory) and a base address aligned for the element type;
// mappings are page-aligned, so this holds for every whole-file view.
package conv

import (
	"fmt"
	"math"
	"unsafe"
)

// Uint64ToInt converts uint64 to int, rejecting values above MaxInt.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int", v)
	}

	return int(v), nil
}

// Int64ToInt converts int64 to int, rejecting negative values and values
// above MaxInt.
func Int64ToInt(v int64) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("invalid value: %d is negative", v)
	}
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int", v)
	}

	return int(v), nil
}

// IntToInt32 converts int to int32, rejecting negative values and values
// above MaxInt32.
func IntToInt32(v int) (int32, error) {
	if v < 0 {
		return 0, fmt.Errorf("invalid value: %d is negative", v)
	}
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}

	return int32(v), nil
}

// IntToUint32 converts int to uint32, rejecting negative values and values
// above MaxUint32.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("invalid value: %d is negative", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32", v)
	}

	return uint32(v), nil
}

// BytesToFloat32s views b as a []float32. len(b) must be a multiple of 4.
// The returned slice aliases b.
func BytesToFloat32s(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}

	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}

// BytesToFloat64s views b as a []float64. len(b) must be a multiple of 8.
// The returned slice aliases b.
func BytesToFloat64s(b []byte) []float64 {
	if len(b) == 0 {
		return nil
	}

	return unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), len(b)/8)
}

// BytesToInt64s views b as a []int64. len(b) must be a multiple of 8.
// The returned slice aliases b.
func BytesToInt64s(b []byte) []int64 {
	if len(b) == 0 {
		return nil
	}

	return unsafe.Slice((*int64)(unsafe.Pointer(&b[0])), len(b)/8)
}

// BytesToInt32s views b as a []int32. len(b) must be a multiple of 4.
// The returned slice aliases b.
func BytesToInt32s(b []byte) []int32 {
	if len(b) == 0 {
		return nil
	}

	return unsafe.Slice((*int32)(unsafe.Pointer(&b[0])), len(b)/4)
}
