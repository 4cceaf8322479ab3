package readzone

import (
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIOBufferValidation(t *testing.T) {
	_, err := NewIOBuffer(0, 512)
	require.ErrorIs(t, err, ErrInvalidIOSize)

	_, err = NewIOBuffer(-4096, 512)
	require.ErrorIs(t, err, ErrInvalidIOSize)

	// Not a multiple of the logical block size.
	_, err = NewIOBuffer(4096+17, 512)
	require.ErrorIs(t, err, ErrInvalidIOSize)

	_, err = NewIOBuffer(512, 4096)
	require.ErrorIs(t, err, ErrInvalidIOSize)
}

func TestNewIOBufferAligned(t *testing.T) {
	buf, err := NewIOBuffer(64*1024, 4096)
	require.NoError(t, err)
	defer buf.Close()

	require.Len(t, buf.Bytes(), 64*1024)
	assert.Equal(t, int64(128), buf.Sectors())

	pageSize := uintptr(os.Getpagesize())
	addr := uintptr(unsafe.Pointer(&buf.Bytes()[0]))
	assert.Zero(t, addr%pageSize, "buffer must be page aligned")
}

func TestIOBufferClose(t *testing.T) {
	buf, err := NewIOBuffer(4096, 512)
	require.NoError(t, err)

	require.NoError(t, buf.Close())
	// Close is idempotent.
	require.NoError(t, buf.Close())
}
