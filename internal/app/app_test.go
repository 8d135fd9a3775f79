package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/guidoenr/ledtree/internal/config"
	"github.com/guidoenr/ledtree/internal/engine"
	"github.com/guidoenr/ledtree/internal/input"
	"github.com/guidoenr/ledtree/internal/render"
	"github.com/guidoenr/ledtree/internal/telemetry"
)

type constSource int

func (c constSource) Read() int { return int(c) }

type countingSink struct {
	shown  int
	quitAt int
	closed bool
	lit    int
}

func (s *countingSink) Show(strip render.Strip, matrix *render.Matrix) error {
	s.shown++
	s.lit = matrix.Lit()
	if s.quitAt > 0 && s.shown >= s.quitAt {
		return render.ErrRendererQuit
	}
	return nil
}

func (s *countingSink) Close() error {
	s.closed = true
	return nil
}

func fastTunables() config.Tunables {
	cfg := config.Defaults()
	cfg.CalibrationSamples = 4
	cfg.CalibrationDelay = time.Millisecond
	return cfg
}

func quietLogger() *log.Logger { return log.New(&bytes.Buffer{}, "", 0) }

func TestRunCalibratesAndStopsOnSinkQuit(t *testing.T) {
	sink := &countingSink{quitAt: 3}
	var out bytes.Buffer
	a, err := New(Config{
		Tunables:  fastTunables(),
		Source:    constSource(512),
		Switch:    input.Fixed(true),
		Sinks:     []render.Sink{sink},
		Emitter:   telemetry.NewEmitter(telemetry.EmitterConfig{Writers: []io.Writer{&out}}),
		TargetFPS: 500,
		Seed:      1,
		Log:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if a.Frames() != 3 {
		t.Fatalf("frames=%d want=3", a.Frames())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("telemetry lines=%d want=2 (the quitting frame emits nothing)", len(lines))
	}
	if lines[0] != "512,0,100,512,0,0,1" {
		t.Fatalf("first line=%q", lines[0])
	}
	if err := a.Close(); err != nil || !sink.closed {
		t.Fatalf("close err=%v closed=%v", err, sink.closed)
	}
}

func TestRunQuitsOnKeyboardEvent(t *testing.T) {
	events := make(chan input.Event, 1)
	events <- input.EventQuit
	a, err := New(Config{
		Tunables:  fastTunables(),
		Source:    constSource(512),
		Events:    events,
		ZeroPoint: 512,
		TargetFPS: 1,
		Log:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunHonorsContext(t *testing.T) {
	a, err := New(Config{Tunables: fastTunables(), Source: constSource(512), ZeroPoint: 512, Log: quietLogger()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("run err=%v want deadline", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Tunables: fastTunables()}); err == nil {
		t.Fatalf("missing source accepted")
	}
	bad := fastTunables()
	bad.StripLength = 0
	if _, err := New(Config{Tunables: bad, Source: constSource(0)}); err == nil {
		t.Fatalf("invalid tunables accepted")
	}
}

func TestStepFollowsSwitch(t *testing.T) {
	toggle := input.NewToggle(true)
	sink := &countingSink{}
	a, err := New(Config{
		Tunables: fastTunables(),
		Source:   constSource(600),
		Switch:   toggle,
		Sinks:    []render.Sink{sink},
		Seed:     3,
		Log:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.engine = engine.New(a.cfg.Tunables, 512, a.dispatch)

	if err := a.step(0); err != nil {
		t.Fatalf("step: %v", err)
	}
	if a.last.Mode != engine.ModeVisualizer || sink.lit != 8*12 {
		t.Fatalf("loud input: mode=%s lit=%d", a.last.Mode, sink.lit)
	}
	if !strings.HasPrefix(a.Status(), "visualizer | raw=600") {
		t.Fatalf("status=%q", a.Status())
	}

	toggle.Set(false)
	if err := a.step(10 * time.Millisecond); err != nil {
		t.Fatalf("step: %v", err)
	}
	if a.last.Mode != engine.ModeIdle || a.last.Pattern != "rainbow" {
		t.Fatalf("switch off: %+v", a.last)
	}
	if !strings.HasSuffix(a.Status(), "| rainbow") {
		t.Fatalf("status=%q", a.Status())
	}
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestProfilerWritesSections(t *testing.T) {
	var buf bytes.Buffer
	clock := time.Unix(0, 0)
	p := newProfilerTo(nopCloser{&buf}, func() time.Time {
		clock = clock.Add(2 * time.Millisecond)
		return clock
	})
	p.beginFrame()
	p.markSection("engine")
	p.endFrame()

	want := "frame,section,delta_ms\n1,engine,2.000\n1,frame_total,4.000\n"
	if buf.String() != want {
		t.Fatalf("profile=%q want=%q", buf.String(), want)
	}

	var nilProfiler *profiler
	nilProfiler.beginFrame()
	nilProfiler.markSection("x")
	if err := nilProfiler.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

type flakySwitch struct{ err error }

func (f *flakySwitch) MusicMode() bool { return true }
func (f *flakySwitch) Err() error { return f.err }

func TestSwitchErrorsLoggedOnce(t *testing.T) {
	var logs bytes.Buffer
	sw := &flakySwitch{err: errors.New("line busy")}
	a, err := New(Config{Tunables: fastTunables(), Source: constSource(512), Switch: sw, Log: log.New(&logs, "", 0)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.checkSwitch()
	a.checkSwitch()
	sw.err = nil
	a.checkSwitch()
	sw.err = errors.New("line busy")
	a.checkSwitch()
	if got := strings.Count(logs.String(), "line busy"); got != 2 {
		t.Fatalf("logged %d times want=2:\n%s", got, logs.String())
	}
}
