//go:build linux

package zbd

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Block layer ioctls (linux/fs.h, linux/blkzoned.h).
const (
	blkSSZGET     = 0x1268
	blkPBSZGET    = 0x127b
	blkGETSIZE64  = 0x80081272
	blkREPORTZONE = 0xc0101282
	blkGETZONESZ  = 0x80041284
	blkGETNRZONES = 0x80041285
)

// Zones fetched per BLKREPORTZONE call.
const reportZonesChunk = 4096

type blockDevice struct {
	f    *os.File
	info Info
	log  *zap.Logger
}

// Open opens the zoned block device at path. It fails with ErrNotZoned
// when the device does not expose a zoned access model.
func Open(path string, opts Options) (Device, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	model, err := zonedModel(path)
	if err != nil {
		return nil, err
	}

	flags := os.O_RDONLY
	if opts.Direct {
		flags |= unix.O_DIRECT
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	info, err := readGeometry(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}

	log.Debug("device opened",
		zap.String("path", path),
		zap.String("zoned", model),
		zap.Int64("logical_block_size", info.LogicalBlockSize),
		zap.Int64("capacity_sectors", info.CapacitySectors),
		zap.Uint32("nr_zones", info.NrZones),
		zap.Bool("direct", opts.Direct))

	return &blockDevice{f: f, info: info, log: log}, nil
}

// zonedModel reads the queue/zoned sysfs attribute for the device node.
// Anything other than host-managed or host-aware is rejected.
func zonedModel(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	name := filepath.Base(resolved)

	attr := filepath.Join("/sys/class/block", name, "queue", "zoned")
	b, err := os.ReadFile(attr)
	if err != nil {
		attr = filepath.Join("/sys/block", name, "queue", "zoned")
		b, err = os.ReadFile(attr)
	}
	if err != nil {
		return "", errors.Wrapf(ErrNotZoned, "%s has no zoned queue attribute", path)
	}

	model := strings.TrimSpace(string(b))
	switch model {
	case "host-managed", "host-aware":
		return model, nil
	}
	return "", errors.Wrapf(ErrNotZoned, "%s is %q", path, model)
}

func readGeometry(f *os.File, path string) (Info, error) {
	fd := f.Fd()
	info := Info{Path: path}

	var lbs int32
	if err := ioctl(fd, blkSSZGET, unsafe.Pointer(&lbs)); err != nil {
		return info, errors.Wrap(err, "BLKSSZGET")
	}
	info.LogicalBlockSize = int64(lbs)

	var pbs int32
	if err := ioctl(fd, blkPBSZGET, unsafe.Pointer(&pbs)); err == nil {
		info.PhysicalBlockSize = int64(pbs)
	}

	var sizeBytes uint64
	if err := ioctl(fd, blkGETSIZE64, unsafe.Pointer(&sizeBytes)); err != nil {
		return info, errors.Wrap(err, "BLKGETSIZE64")
	}
	info.CapacitySectors = int64(sizeBytes >> SectorShift)

	var zoneSectors uint32
	if err := ioctl(fd, blkGETZONESZ, unsafe.Pointer(&zoneSectors)); err != nil {
		return info, errors.Wrap(err, "BLKGETZONESZ")
	}
	info.ZoneSectors = int64(zoneSectors)

	var nrZones uint32
	if err := ioctl(fd, blkGETNRZONES, unsafe.Pointer(&nrZones)); err != nil {
		return info, errors.Wrap(err, "BLKGETNRZONES")
	}
	info.NrZones = nrZones

	info.Model = readModel(path)

	return info, nil
}

// readModel pulls the device model string from sysfs, best-effort.
func readModel(path string) string {
	name := filepath.Base(path)
	b, err := os.ReadFile(filepath.Join("/sys/class/block", name, "device", "model"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *blockDevice) Info() Info { return d.info }

func (d *blockDevice) ReportZones() ([]Zone, error) {
	buf := make([]byte, zoneReportHeaderLen+reportZonesChunk*zoneDescriptorLen)

	var (
		zones  []Zone
		cursor uint64
	)
	for {
		binary.LittleEndian.PutUint64(buf[0:8], cursor)
		binary.LittleEndian.PutUint32(buf[8:12], reportZonesChunk)
		binary.LittleEndian.PutUint32(buf[12:16], 0)

		if err := ioctl(d.f.Fd(), blkREPORTZONE, unsafe.Pointer(&buf[0])); err != nil {
			return nil, errors.Wrap(err, "BLKREPORTZONE")
		}
		chunk, nr, err := decodeZoneReport(buf)
		if err != nil {
			return nil, err
		}
		if nr == 0 {
			break
		}
		zones = append(zones, chunk...)

		last := chunk[len(chunk)-1]
		cursor = last.Start + last.Length
		if cursor >= uint64(d.info.CapacitySectors) {
			break
		}
	}

	d.log.Debug("zone report", zap.Int("zones", len(zones)))
	return zones, nil
}

func (d *blockDevice) ReadSectors(buf []byte, sector int64) (int64, error) {
	n, err := unix.Pread(int(d.f.Fd()), buf, sector<<SectorShift)
	if err != nil {
		return 0, errors.Wrapf(err, "pread %d sectors at %d", len(buf)>>SectorShift, sector)
	}
	return int64(n) >> SectorShift, nil
}

func (d *blockDevice) ReadVectored(segs [][]byte, sector int64) (int64, error) {
	n, err := unix.Preadv(int(d.f.Fd()), segs, sector<<SectorShift)
	if err != nil {
		return 0, errors.Wrapf(err, "preadv %d segments at %d", len(segs), sector)
	}
	return int64(n) >> SectorShift, nil
}

func (d *blockDevice) Close() error {
	d.log.Debug("device closed", zap.String("path", d.info.Path))
	return d.f.Close()
}
