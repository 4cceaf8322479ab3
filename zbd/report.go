package zbd

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Wire sizes of struct blk_zone_report and struct blk_zone as defined by
// the Linux block layer UAPI.
const (
	zoneReportHeaderLen = 16
	zoneDescriptorLen   = 64
)

// decodeZoneReport parses the buffer filled by BLKREPORTZONE: a 16-byte
// header followed by nr_zones 64-byte descriptors. It returns the decoded
// zones and the nr_zones count reported by the kernel.
func decodeZoneReport(buf []byte) ([]Zone, uint32, error) {
	if len(buf) < zoneReportHeaderLen {
		return nil, 0, errors.New("zone report buffer truncated")
	}
	nr := binary.LittleEndian.Uint32(buf[8:12])

	need := zoneReportHeaderLen + int(nr)*zoneDescriptorLen
	if len(buf) < need {
		return nil, 0, errors.Errorf("zone report holds %d zones but buffer is %d bytes", nr, len(buf))
	}

	zones := make([]Zone, 0, nr)
	for i := 0; i < int(nr); i++ {
		off := zoneReportHeaderLen + i*zoneDescriptorLen
		zones = append(zones, decodeZone(buf[off:off+zoneDescriptorLen]))
	}
	return zones, nr, nil
}

func decodeZone(d []byte) Zone {
	return Zone{
		Start:        binary.LittleEndian.Uint64(d[0:8]),
		Length:       binary.LittleEndian.Uint64(d[8:16]),
		WritePointer: binary.LittleEndian.Uint64(d[16:24]),
		Type:         ZoneType(d[24]),
		Condition:    ZoneCondition(d[25]),
	}
}
