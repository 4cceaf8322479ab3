package readzone

import (
	"fmt"
	"strings"
	"time"
)

// Report accumulates the transfer counters of one run and renders the
// bandwidth summary. Rates are computed over microseconds so the output
// keeps millisecond-style fractions.
type Report struct {
	Bytes   uint64
	IOs     uint64
	Elapsed time.Duration
}

// IOPS is the number of read calls per second, zero when the clock did
// not advance.
func (r Report) IOPS() uint64 {
	us := r.Elapsed.Microseconds()
	if us <= 0 {
		return 0
	}
	return r.IOs * 1000000 / uint64(us)
}

// BytesPerSec is the transfer rate in bytes per second, zero when the
// clock did not advance.
func (r Report) BytesPerSec() uint64 {
	us := r.Elapsed.Microseconds()
	if us <= 0 {
		return 0
	}
	return r.Bytes * 1000000 / uint64(us)
}

func (r Report) String() string {
	us := r.Elapsed.Microseconds()
	if us <= 0 {
		return fmt.Sprintf("Read %d B (%d I/Os)\n", r.Bytes, r.IOs)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Read %d B (%d I/Os) in %d.%03d sec\n",
		r.Bytes, r.IOs, us/1000000, (us%1000000)/1000)
	fmt.Fprintf(&b, "  IOPS %d\n", r.IOPS())
	rate := r.BytesPerSec()
	fmt.Fprintf(&b, "  BW %d.%03d MB/s\n", rate/1000000, (rate%1000000)/1000)
	return b.String()
}
