package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferWriteAndReset(t *testing.T) {
	bb := NewByteBuffer(16)
	require.Zero(t, bb.Len())

	n, err := bb.Write([]byte("offsets"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, []byte("offsets"), bb.Bytes())

	bb.Reset()
	require.Zero(t, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 16)
}

func TestByteBufferWriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	_, err := bb.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, []byte{1, 2, 3}, out.Bytes())
}

func TestByteBufferPoolReuse(t *testing.T) {
	p := NewByteBufferPool(8, 0)

	bb := p.Get()
	require.NotNil(t, bb)
	_, _ = bb.Write([]byte("abc"))
	p.Put(bb)

	reused := p.Get()
	require.NotNil(t, reused)
	require.Zero(t, reused.Len(), "buffers must come back reset")
}

func TestByteBufferPoolThreshold(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	big := NewByteBuffer(64)
	_, _ = big.Write(make([]byte, 64))
	p.Put(big) // must be discarded, not retained

	bb := p.Get()
	require.LessOrEqual(t, cap(bb.B), 64)
}

func TestDefaultMemberPool(t *testing.T) {
	bb := GetMemberBuffer()
	require.NotNil(t, bb)
	require.Zero(t, bb.Len())
	PutMemberBuffer(bb)
	PutMemberBuffer(nil) // must not panic
}
