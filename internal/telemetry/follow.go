package telemetry

import (
	"bufio"
	"io"
	"log"

	"github.com/pkg/errors"
)

// Follow reads telemetry lines from r, for example the serial port of a strip
// running the firmware, and hands each parsed record to the listeners. The
// line bytes are passed through unchanged. Malformed lines are logged and
// skipped; a half-received first line after opening a port is normal.
// Follow returns nil at end of input.
func Follow(r io.Reader, logger *log.Logger, listeners ...Listener) (int, error) {
	sc := bufio.NewScanner(r)
	var buf []byte
	n := 0
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		rec, err := ParseLine(string(line))
		if err != nil {
			if logger != nil {
				logger.Printf("skipping telemetry line %q: %v", line, err)
			}
			continue
		}
		buf = append(append(buf[:0], line...), '\n')
		for _, l := range listeners {
			l.Publish(buf, rec)
		}
		n++
	}
	return n, errors.Wrap(sc.Err(), "read telemetry")
}

// WriterListener copies each line to w.
type WriterListener struct {
	W io.Writer
}

func (w WriterListener) Publish(line []byte, _ Record) {
	_, _ = w.W.Write(line)
}
