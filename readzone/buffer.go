package readzone

import (
	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/TweakySolution/libzbc/zbd"
)

// ErrInvalidIOSize is returned when the requested I/O unit is zero or
// not a multiple of the device logical block size.
var ErrInvalidIOSize = errors.New("invalid I/O size")

// IOBuffer is a page-aligned buffer sized to the configured I/O unit.
// It is acquired once and reused across read iterations; direct I/O
// requires the page alignment an anonymous mapping guarantees.
type IOBuffer struct {
	mm mmap.MMap
}

// NewIOBuffer validates the I/O unit against the logical block size and
// maps an anonymous region of that size.
func NewIOBuffer(size int64, logicalBlockSize int64) (*IOBuffer, error) {
	if size <= 0 || size%logicalBlockSize != 0 {
		return nil, errors.Wrapf(ErrInvalidIOSize, "%d B (must be a nonzero multiple of %d B)", size, logicalBlockSize)
	}
	mm, err := mmap.MapRegion(nil, int(size), mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "no memory for I/O buffer (%d B)", size)
	}
	return &IOBuffer{mm: mm}, nil
}

// Bytes returns the full buffer.
func (b *IOBuffer) Bytes() []byte { return b.mm }

// Sectors is the buffer capacity in 512-byte sectors.
func (b *IOBuffer) Sectors() int64 { return int64(len(b.mm)) >> zbd.SectorShift }

// Close releases the mapping. The buffer must not be used afterwards.
func (b *IOBuffer) Close() error {
	if b.mm == nil {
		return nil
	}
	err := b.mm.Unmap()
	b.mm = nil
	return err
}
