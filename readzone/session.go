package readzone

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/TweakySolution/libzbc/zbd"
)

// StopReason records why the read loop ended.
type StopReason int

const (
	// StopRangeExhausted: the offset reached the readable bound.
	StopRangeExhausted StopReason = iota
	// StopIOLimit: the configured I/O count cap was reached.
	StopIOLimit
	// StopAborted: the abort flag was observed at the top of the loop.
	StopAborted
	// StopReadError: a device read failed or transferred nothing.
	StopReadError
	// StopWriteError: the output sink rejected data.
	StopWriteError
)

func (r StopReason) String() string {
	switch r {
	case StopRangeExhausted:
		return "range exhausted"
	case StopIOLimit:
		return "I/O limit reached"
	case StopAborted:
		return "aborted"
	case StopReadError:
		return "read error"
	case StopWriteError:
		return "write error"
	}
	return "unknown"
}

// Config carries the per-run knobs of the read loop.
type Config struct {
	// Vectored splits each large enough transfer into two buffer
	// segments issued as one vectored read.
	Vectored bool

	// IOLimit caps the number of read calls. Zero means unbounded.
	IOLimit uint64

	// SectorOffset is the starting offset within the zone's readable
	// range, in sectors.
	SectorOffset int64

	// Sink receives the raw zone bytes in order. nil discards the data.
	Sink io.Writer

	// Abort is set by the signal layer and polled at the top of each
	// iteration; an in-flight read is never interrupted.
	Abort *atomic.Bool

	// Observer, if set, is called after each completed iteration with
	// the new zone-relative offset and the sectors just transferred.
	Observer func(offset, transferred int64)

	Logger *zap.Logger
}

// Session is the read loop engine for a single target zone. It owns the
// I/O buffer for the duration of the run and mutates no shared state.
type Session struct {
	dev  zbd.Device
	zone zbd.Zone
	buf  *IOBuffer
	cfg  Config
	log  *zap.Logger

	offset    int64
	maxSector int64
	ioCount   uint64
	byteCount uint64
}

// NewSession prepares a run against the given zone. The readable bound
// is fixed here from the zone snapshot; the starting offset is clamped
// to it.
func NewSession(dev zbd.Device, zone zbd.Zone, buf *IOBuffer, cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxSector := ReadableSectors(zone)
	offset := cfg.SectorOffset
	if offset > maxSector {
		offset = maxSector
	}
	return &Session{
		dev:       dev,
		zone:      zone,
		buf:       buf,
		cfg:       cfg,
		log:       log,
		offset:    offset,
		maxSector: maxSector,
	}
}

// MaxSector is the exclusive upper bound of the readable range, in
// sectors relative to the zone start.
func (s *Session) MaxSector() int64 { return s.maxSector }

// Run drives the loop until the range is exhausted, the I/O cap is hit,
// the abort flag is raised, or an error occurs. The returned Report is
// valid in every case; err is non-nil only for read and write failures.
func (s *Session) Run() (Report, StopReason, error) {
	start := time.Now()
	reason, err := s.loop()
	rep := Report{
		Bytes:   s.byteCount,
		IOs:     s.ioCount,
		Elapsed: time.Since(start),
	}
	s.log.Debug("read loop finished",
		zap.Stringer("reason", reason),
		zap.Uint64("bytes", rep.Bytes),
		zap.Uint64("ios", rep.IOs),
		zap.Duration("elapsed", rep.Elapsed))
	return rep, reason, err
}

func (s *Session) loop() (StopReason, error) {
	lbsSectors := s.dev.Info().LogicalBlockSectors()
	unit := s.buf.Sectors()

	for {
		if s.cfg.Abort != nil && s.cfg.Abort.Load() {
			return StopAborted, nil
		}
		if s.offset >= s.maxSector {
			return StopRangeExhausted, nil
		}

		count := unit
		if remain := s.maxSector - s.offset; count > remain {
			count = remain
		}
		sector := int64(s.zone.Start) + s.offset

		var (
			transferred int64
			err         error
		)
		if s.cfg.Vectored && count >= 2*lbsSectors {
			// Split into two roughly equal segments; below twice the
			// block size the split would degenerate.
			half := count / 2
			buf := s.buf.Bytes()
			segs := [][]byte{
				buf[:half<<zbd.SectorShift],
				buf[half<<zbd.SectorShift : count<<zbd.SectorShift],
			}
			transferred, err = s.dev.ReadVectored(segs, sector)
		} else {
			transferred, err = s.dev.ReadSectors(s.buf.Bytes()[:count<<zbd.SectorShift], sector)
		}
		if err != nil {
			return StopReadError, err
		}
		if transferred <= 0 {
			return StopReadError, errors.Errorf("device returned no data at sector %d", sector)
		}

		if s.cfg.Sink != nil {
			nbytes := int(transferred << zbd.SectorShift)
			n, werr := s.cfg.Sink.Write(s.buf.Bytes()[:nbytes])
			if werr != nil {
				return StopWriteError, errors.Wrap(werr, "write output")
			}
			if n != nbytes {
				return StopWriteError, errors.Wrap(io.ErrShortWrite, "write output")
			}
		}

		// A short transfer is a valid result; just advance by what the
		// device actually moved.
		s.offset += transferred
		s.byteCount += uint64(transferred) << zbd.SectorShift
		s.ioCount++

		if s.cfg.Observer != nil {
			s.cfg.Observer(s.offset, transferred)
		}

		if s.cfg.IOLimit > 0 && s.ioCount >= s.cfg.IOLimit {
			return StopIOLimit, nil
		}
	}
}
