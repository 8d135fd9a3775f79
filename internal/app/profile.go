package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// profiler appends per-section tick timings to a CSV file. A nil profiler is
// valid and records nothing.
type profiler struct {
	out   io.WriteCloser
	now   func() time.Time
	start time.Time
	last  time.Time
	frame uint64
}

func newProfiler(path string, logger *log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Printf("profiler disabled: %v", err)
		return nil
	}
	return newProfilerTo(f, time.Now)
}

func newProfilerTo(out io.WriteCloser, now func() time.Time) *profiler {
	p := &profiler{out: out, now: now}
	fmt.Fprintln(p.out, "frame,section,delta_ms")
	return p
}

func (p *profiler) beginFrame() {
	if p == nil {
		return
	}
	p.frame++
	p.start = p.now()
	p.last = p.start
}

func (p *profiler) markSection(name string) {
	if p == nil {
		return
	}
	now := p.now()
	p.write(name, now.Sub(p.last))
	p.last = now
}

func (p *profiler) endFrame() {
	if p == nil {
		return
	}
	p.write("frame_total", p.now().Sub(p.start))
}

func (p *profiler) Close() error {
	if p == nil {
		return nil
	}
	return p.out.Close()
}

func (p *profiler) write(section string, d time.Duration) {
	fmt.Fprintf(p.out, "%d,%s,%.3f\n", p.frame, section, float64(d)/float64(time.Millisecond))
}
