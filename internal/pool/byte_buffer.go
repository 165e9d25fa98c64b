// Package pool provides reusable byte buffers for assembling archive
// sections without repeated allocations.
package pool

import (
	"io"
	"sync"
)

const (
	// MemberBufferDefaultSize is the starting capacity of buffers used to
	// stage a single compressed group member.
	MemberBufferDefaultSize = 1024 * 64 // 64KiB

	// MemberBufferMaxThreshold caps the capacity of buffers returned to the
	// pool; larger ones are dropped to avoid retaining a huge tractogram's
	// worth of memory.
	MemberBufferMaxThreshold = 1024 * 1024 * 16 // 16MiB
)

// ByteBuffer is a growable byte slice with explicit length control.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified starting capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers with a maximum retained
// capacity.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of the given starting
// capacity, discarding returned buffers whose capacity exceeds maxThreshold
// (0 disables the limit).
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var memberDefaultPool = NewByteBufferPool(MemberBufferDefaultSize, MemberBufferMaxThreshold)

// GetMemberBuffer retrieves a ByteBuffer from the default member pool.
func GetMemberBuffer() *ByteBuffer {
	return memberDefaultPool.Get()
}

// PutMemberBuffer returns a ByteBuffer to the default member pool.
func PutMemberBuffer(bb *ByteBuffer) {
	memberDefaultPool.Put(bb)
}
