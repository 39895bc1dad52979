package pool

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorWriter struct {
	err error
}

func (w *errorWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_Resize(t *testing.T) {
	bb := NewByteBuffer(8)

	b := bb.Resize(4)
	assert.Len(t, b, 4)
	assert.Equal(t, 8, bb.Cap(), "resize within capacity keeps the backing array")

	b = bb.Resize(32)
	assert.Len(t, b, 32)
	assert.GreaterOrEqual(t, bb.Cap(), 32)

	bb.Resize(0)
	assert.Equal(t, 0, bb.Len())

	assert.Panics(t, func() { bb.Resize(-1) })
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(16)

	n, err := bb.Write([]byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, _ = bb.Write([]byte("s"))
	assert.Equal(t, []byte("frames"), bb.Bytes())

	originalCap := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap())
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte("chunk data"))

	var buf bytes.Buffer
	n, err := bb.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, "chunk data", buf.String())

	_, err = bb.WriteTo(&errorWriter{err: io.ErrShortWrite})
	assert.Equal(t, io.ErrShortWrite, err)
}

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(64, 128)

	bb := p.Get()
	require.NotNil(t, bb)
	assert.Equal(t, 64, bb.Cap())

	_, _ = bb.Write([]byte("dirty"))
	p.Put(bb)

	again := p.Get()
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")

	p.Put(nil)
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	bb := p.Get()
	bb.Resize(1024)
	p.Put(bb)

	again := p.Get()
	assert.LessOrEqual(t, again.Cap(), 16)
}

func TestChunkBuffer(t *testing.T) {
	bb := GetChunkBuffer()
	require.NotNil(t, bb)
	assert.GreaterOrEqual(t, bb.Cap(), ChunkBufferDefaultSize)
	PutChunkBuffer(bb)
}
