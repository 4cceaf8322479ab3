// Package readzone implements the zone read path: target zone
// resolution, the bounded read loop, output sinking, and the transfer
// rate report.
package readzone

import (
	"github.com/pkg/errors"

	"github.com/TweakySolution/libzbc/zbd"
)

// ErrZoneNotFound is returned when the requested zone index is out of
// range for the device.
var ErrZoneNotFound = errors.New("target zone not found")

// TargetZone selects the zone at the given zero-based index from the
// enumerated list.
func TargetZone(zones []zbd.Zone, index int) (zbd.Zone, error) {
	if index < 0 || index >= len(zones) {
		return zbd.Zone{}, errors.Wrapf(ErrZoneNotFound, "zone %d of %d", index, len(zones))
	}
	return zones[index], nil
}

// ReadableSectors returns the number of sectors that hold defined data,
// relative to the zone start. For a sequential-write-required zone that
// is not full only the region below the write pointer is defined; every
// other zone is readable over its whole length.
func ReadableSectors(z zbd.Zone) int64 {
	if z.SequentialRequired() && !z.Full() {
		return int64(z.WritePointer - z.Start)
	}
	return int64(z.Length)
}
