package archive

import (
	"math"
	"unsafe"

	"github.com/neurlab/tracto/endian"
	"github.com/neurlab/tracto/internal/conv"
)

// Members are serialized little-endian. On little-endian hosts, decoding
// copies the raw bytes and reinterprets them in place; decompressed member
// buffers are not guaranteed to be aligned for wider element types, so the
// copy is what makes the reinterpretation safe. Big-endian hosts fall back
// to per-element decoding.

func appendFloat32s(buf []byte, vals []float32) []byte {
	for _, v := range vals {
		buf = engine.AppendUint32(buf, math.Float32bits(v))
	}

	return buf
}

func appendFloat64s(buf []byte, vals []float64) []byte {
	for _, v := range vals {
		buf = engine.AppendUint64(buf, math.Float64bits(v))
	}

	return buf
}

func appendInt64s(buf []byte, vals []int64) []byte {
	for _, v := range vals {
		buf = engine.AppendUint64(buf, uint64(v))
	}

	return buf
}

func appendInt32s(buf []byte, vals []int32) []byte {
	for _, v := range vals {
		buf = engine.AppendUint32(buf, uint32(v))
	}

	return buf
}

// alignedCopy copies b into 8-byte aligned backing memory. Small byte
// allocations are not guaranteed to be aligned for wider element types.
func alignedCopy(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}

	words := make([]uint64, (len(b)+7)/8)
	out := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(b))
	copy(out, b)

	return out
}

func decodeFloat32s(b []byte) []float32 {
	if endian.IsNativeLittleEndian() {
		return conv.BytesToFloat32s(alignedCopy(b))
	}

	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(engine.Uint32(b[i*4:]))
	}

	return out
}

func decodeFloat64s(b []byte) []float64 {
	if endian.IsNativeLittleEndian() {
		return conv.BytesToFloat64s(alignedCopy(b))
	}

	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(engine.Uint64(b[i*8:]))
	}

	return out
}

func decodeInt64s(b []byte) []int64 {
	if endian.IsNativeLittleEndian() {
		return conv.BytesToInt64s(alignedCopy(b))
	}

	out := make([]int64, len(b)/8)
	for i := range out {
		out[i] = int64(engine.Uint64(b[i*8:]))
	}

	return out
}

func decodeInt32s(b []byte) []int32 {
	if endian.IsNativeLittleEndian() {
		return conv.BytesToInt32s(alignedCopy(b))
	}

	out := make([]int32, len(b)/4)
	for i := range out {
		out[i] = int32(engine.Uint32(b[i*4:]))
	}

	return out
}
