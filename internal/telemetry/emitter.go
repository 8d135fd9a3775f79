package telemetry

import (
	"io"
	"log"
	"sync"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// Listener receives every emitted record.
type Listener interface {
	Publish(line []byte, rec Record)
}

// Emitter writes one line per tick to each writer and hands it to listeners.
// Write failures are logged once per distinct message and otherwise dropped;
// the next tick carries fresh data anyway.
type Emitter struct {
	writers   []io.Writer
	listeners []Listener
	reduced   bool
	log       *log.Logger
	buf       []byte
	lastErr   string
}

// EmitterConfig configures an Emitter.
type EmitterConfig struct {
	Writers   []io.Writer
	Listeners []Listener
	Reduced   bool
	Log       *log.Logger
}

func NewEmitter(cfg EmitterConfig) *Emitter {
	return &Emitter{
		writers:   cfg.Writers,
		listeners: cfg.Listeners,
		reduced:   cfg.Reduced,
		log:       cfg.Log,
		buf:       make([]byte, 0, 64),
	}
}

// Emit serializes rec and delivers it.
func (e *Emitter) Emit(rec Record) {
	e.buf = rec.AppendLine(e.buf[:0], e.reduced)
	for _, w := range e.writers {
		if _, err := w.Write(e.buf); err != nil {
			e.report(err)
		}
	}
	for _, l := range e.listeners {
		l.Publish(e.buf, rec)
	}
}

func (e *Emitter) report(err error) {
	msg := err.Error()
	if msg == e.lastErr || e.log == nil {
		return
	}
	e.lastErr = msg
	e.log.Printf("telemetry write failed: %v", err)
}

// SerialPort is an opened serial device.
type SerialPort struct {
	mu   sync.Mutex
	port *serial.Port
}

// OpenSerial opens name (e.g. /dev/ttyACM0) at baud.
func OpenSerial(name string, baud int) (*SerialPort, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, errors.Wrapf(err, "open serial %s", name)
	}
	return &SerialPort{port: port}, nil
}

func (s *SerialPort) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Write(p)
}

// Read is not locked against Write; a port is either written by the emitter
// or read by Follow.
func (s *SerialPort) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Wrap(s.port.Close(), "close serial")
}
