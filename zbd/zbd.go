// Package zbd provides access to zoned block devices (host-managed or
// host-aware SMR drives) through the Linux block layer: device geometry,
// zone reporting, and sector-addressed read primitives.
//
// All sector values are in 512-byte units regardless of the device's
// logical block size, matching the block layer's sector convention.
package zbd

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SectorShift converts between sectors and bytes (sector = 512 B).
const SectorShift = 9

// ErrNotZoned is returned by Open when the target device does not expose
// a zoned access model.
var ErrNotZoned = errors.New("not a zoned block device")

// ZoneType is the access model of a single zone.
type ZoneType uint8

const (
	ZoneTypeConventional ZoneType = 0x1
	ZoneTypeSeqRequired  ZoneType = 0x2
	ZoneTypeSeqPreferred ZoneType = 0x3
)

func (t ZoneType) String() string {
	switch t {
	case ZoneTypeConventional:
		return "conventional"
	case ZoneTypeSeqRequired:
		return "sequential-write-required"
	case ZoneTypeSeqPreferred:
		return "sequential-write-preferred"
	}
	return fmt.Sprintf("unknown(0x%x)", uint8(t))
}

// ZoneCondition is the operational state of a zone.
type ZoneCondition uint8

const (
	ZoneCondNotWP    ZoneCondition = 0x0
	ZoneCondEmpty    ZoneCondition = 0x1
	ZoneCondImpOpen  ZoneCondition = 0x2
	ZoneCondExpOpen  ZoneCondition = 0x3
	ZoneCondClosed   ZoneCondition = 0x4
	ZoneCondReadOnly ZoneCondition = 0xd
	ZoneCondFull     ZoneCondition = 0xe
	ZoneCondOffline  ZoneCondition = 0xf
)

func (c ZoneCondition) String() string {
	switch c {
	case ZoneCondNotWP:
		return "not-write-pointer"
	case ZoneCondEmpty:
		return "empty"
	case ZoneCondImpOpen:
		return "implicitly-open"
	case ZoneCondExpOpen:
		return "explicitly-open"
	case ZoneCondClosed:
		return "closed"
	case ZoneCondReadOnly:
		return "read-only"
	case ZoneCondFull:
		return "full"
	case ZoneCondOffline:
		return "offline"
	}
	return fmt.Sprintf("unknown(0x%x)", uint8(c))
}

// Zone is an immutable snapshot of one zone descriptor.
type Zone struct {
	Start        uint64
	Length       uint64
	WritePointer uint64
	Type         ZoneType
	Condition    ZoneCondition
}

// Conventional reports whether the zone has no write pointer.
func (z Zone) Conventional() bool { return z.Type == ZoneTypeConventional }

// SequentialRequired reports whether the zone must be written sequentially.
func (z Zone) SequentialRequired() bool { return z.Type == ZoneTypeSeqRequired }

// Full reports whether the zone has been written to its end.
func (z Zone) Full() bool { return z.Condition == ZoneCondFull }

// Empty reports whether the zone holds no written data.
func (z Zone) Empty() bool { return z.Condition == ZoneCondEmpty }

// Info describes the device geometry collected at open time.
type Info struct {
	Path              string
	Model             string
	LogicalBlockSize  int64
	PhysicalBlockSize int64
	CapacitySectors   int64
	ZoneSectors       int64
	NrZones           uint32
}

// LogicalBlockSectors is the logical block size in 512-byte sectors.
func (i Info) LogicalBlockSectors() int64 {
	return i.LogicalBlockSize >> SectorShift
}

// Options controls how Open acquires the device.
type Options struct {
	// Direct opens the device with O_DIRECT. Callers must then issue
	// I/O aligned to the logical block size.
	Direct bool
	// Logger receives driver-level diagnostics. nil disables them.
	Logger *zap.Logger
}

// Device is a session on an open zoned block device. Implementations are
// not safe for concurrent use; the read path is single-threaded.
type Device interface {
	// Info returns the geometry snapshot taken at open time.
	Info() Info

	// ReportZones fetches the full zone descriptor list.
	ReportZones() ([]Zone, error)

	// ReadSectors reads len(buf)>>9 sectors starting at the absolute
	// sector address. It returns the number of sectors actually
	// transferred, which may be less than requested.
	ReadSectors(buf []byte, sector int64) (int64, error)

	// ReadVectored reads into the given buffer segments as a single
	// request starting at the absolute sector address. Segment lengths
	// must be sector multiples. Returns sectors transferred.
	ReadVectored(segs [][]byte, sector int64) (int64, error)

	Close() error
}
