package readzone

import (
	"os"

	"github.com/pkg/errors"
)

// StdoutDest is the output destination that selects the standard output
// stream instead of a file.
const StdoutDest = "-"

// Sink is the byte-oriented destination for zone data: either a file
// created for this run or the process standard output. Whether the file
// survives is decided at Close time; a failed run must not leave a
// truncated artifact behind.
type Sink struct {
	f       *os.File
	path    string
	created bool
}

// OpenSink opens the output destination. A file is created with owner
// read/write and group read permissions.
func OpenSink(dest string) (*Sink, error) {
	if dest == StdoutDest {
		return &Sink{f: os.Stdout}, nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, errors.Wrapf(err, "open file %q", dest)
	}
	return &Sink{f: f, path: dest, created: true}, nil
}

// Stdout reports whether the sink writes to standard output.
func (s *Sink) Stdout() bool { return !s.created }

func (s *Sink) Write(p []byte) (int, error) {
	return s.f.Write(p)
}

// Close releases the sink. When keep is false and this run created the
// file, the file is removed. Standard output is left untouched.
func (s *Sink) Close(keep bool) error {
	if !s.created {
		return nil
	}
	err := s.f.Close()
	if !keep {
		if rerr := os.Remove(s.path); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}
