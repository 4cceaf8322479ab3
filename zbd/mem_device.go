package zbd

import "github.com/pkg/errors"

// MemDevice is an in-memory Device over a synthetic zone layout. It backs
// the read-path tests: MaxTransfer forces short transfers and FailSector
// injects read errors at a chosen spot.
type MemDevice struct {
	info  Info
	zones []Zone

	// Data holds the device contents, indexed by absolute byte offset
	// (sector << 9). Tests may fill it with a recognizable pattern.
	Data []byte

	// MaxTransfer caps the sectors moved by a single read call. Zero
	// means no cap.
	MaxTransfer int64

	// FailSector makes any read starting at that absolute sector fail.
	// Negative disables injection.
	FailSector int64
}

// NewMemDevice builds a MemDevice with the given logical block size and
// zone list. The device capacity is the end of the last zone.
func NewMemDevice(logicalBlockSize int64, zones []Zone) *MemDevice {
	var capacity uint64
	for _, z := range zones {
		if end := z.Start + z.Length; end > capacity {
			capacity = end
		}
	}
	return &MemDevice{
		info: Info{
			Path:             "mem",
			LogicalBlockSize: logicalBlockSize,
			CapacitySectors:  int64(capacity),
			NrZones:          uint32(len(zones)),
		},
		zones:      zones,
		Data:       make([]byte, capacity<<SectorShift),
		FailSector: -1,
	}
}

func (m *MemDevice) Info() Info { return m.info }

func (m *MemDevice) ReportZones() ([]Zone, error) {
	out := make([]Zone, len(m.zones))
	copy(out, m.zones)
	return out, nil
}

func (m *MemDevice) ReadSectors(buf []byte, sector int64) (int64, error) {
	return m.read(buf, sector)
}

func (m *MemDevice) ReadVectored(segs [][]byte, sector int64) (int64, error) {
	var total int64
	cur := sector
	for _, seg := range segs {
		n, err := m.read(seg, cur)
		if err != nil {
			return 0, err
		}
		total += n
		cur += n
		if int(n<<SectorShift) < len(seg) {
			break
		}
	}
	return total, nil
}

func (m *MemDevice) read(buf []byte, sector int64) (int64, error) {
	if sector == m.FailSector {
		return 0, errors.Errorf("injected read failure at sector %d", sector)
	}
	count := int64(len(buf)) >> SectorShift
	if m.MaxTransfer > 0 && count > m.MaxTransfer {
		count = m.MaxTransfer
	}
	if remain := m.info.CapacitySectors - sector; count > remain {
		count = remain
	}
	if count <= 0 {
		return 0, nil
	}
	off := sector << SectorShift
	copy(buf[:count<<SectorShift], m.Data[off:off+(count<<SectorShift)])
	return count, nil
}

func (m *MemDevice) Close() error { return nil }
