// Package app runs the control loop: it calibrates the input, ticks the
// engine at a fixed rate and pushes every frame to the display sinks and the
// telemetry emitter.
package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/guidoenr/ledtree/internal/config"
	"github.com/guidoenr/ledtree/internal/engine"
	"github.com/guidoenr/ledtree/internal/idle"
	"github.com/guidoenr/ledtree/internal/input"
	"github.com/guidoenr/ledtree/internal/render"
	"github.com/guidoenr/ledtree/internal/sampler"
	"github.com/guidoenr/ledtree/internal/telemetry"
	"github.com/pkg/errors"
)

// Config configures the application runtime.
type Config struct {
	Tunables  config.Tunables
	Source    sampler.Source
	Switch    input.Switch
	Sinks     []render.Sink
	Emitter   *telemetry.Emitter
	// Events carries keyboard commands; nil when there is no keyboard.
	Events    <-chan input.Event
	// ZeroPoint skips calibration when positive.
	ZeroPoint int
	TargetFPS float64
	Seed      int64
	Profile   string
	Log       *log.Logger
}

// App ties together the input, the engine and the outputs.
type App struct {
	cfg      Config
	log      *log.Logger
	dispatch *idle.Dispatcher
	engine   *engine.Engine
	profiler *profiler
	start    time.Time
	last     engine.Snapshot
	frames   uint64
	swErr    string
}

// New validates the configuration. The engine is built by Run once the zero
// point is known.
func New(cfg Config) (*App, error) {
	if err := cfg.Tunables.Validate(); err != nil {
		return nil, errors.Wrap(err, "tunables")
	}
	if cfg.Source == nil {
		return nil, errors.New("no input source")
	}
	if cfg.Switch == nil {
		cfg.Switch = input.Fixed(true)
	}
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 60
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stderr, "", 0)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &App{
		cfg:      cfg,
		log:      cfg.Log,
		dispatch: idle.NewDispatcher(cfg.Tunables, rand.New(rand.NewSource(cfg.Seed))),
		profiler: newProfiler(cfg.Profile, cfg.Log),
	}, nil
}

// Run calibrates and then ticks until ctx is cancelled, quit is requested or
// a sink fails. A user-requested quit returns nil.
func (a *App) Run(ctx context.Context) error {
	zero := a.cfg.ZeroPoint
	if zero <= 0 {
		zero = sampler.Calibrate(ctx, a.cfg.Source, a.cfg.Tunables, a.log).ZeroPoint
	} else {
		a.log.Printf("using fixed zero point %d", zero)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	a.engine = engine.New(a.cfg.Tunables, zero, a.dispatch)

	frame := time.Duration(float64(time.Second) / a.cfg.TargetFPS)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := a.cfg.Events
	a.start = time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch evt {
			case input.EventQuit:
				return nil
			case input.EventToggled:
				a.log.Printf("music switch %s", onOff(a.cfg.Switch.MusicMode()))
			}
		case <-ticker.C:
			err := a.step(time.Since(a.start))
			if errors.Is(err, render.ErrRendererQuit) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

// Close releases the sinks and the profiler.
func (a *App) Close() error {
	var first error
	for _, s := range a.cfg.Sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := a.profiler.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Status is a one-line summary of the last tick for the terminal status bar.
func (a *App) Status() string {
	s := a.last
	text := fmt.Sprintf("%s | raw=%d amp=%d ceil=%d zero=%d h=%d peak=%d | switch=%s",
		s.Mode, s.Raw, s.Amplitude, s.Ceiling, s.ZeroPoint, s.Height, s.Peak, onOff(s.Switch))
	if s.Mode == engine.ModeIdle && s.Pattern != "" {
		text += " | " + s.Pattern
	}
	return text
}

// Frames returns how many ticks have run.
func (a *App) Frames() uint64 { return a.frames }

func (a *App) step(now time.Duration) error {
	a.profiler.beginFrame()

	raw := a.cfg.Source.Read()
	music := a.cfg.Switch.MusicMode()
	a.checkSwitch()
	a.profiler.markSection("sample")

	a.last = a.engine.Tick(now, raw, music)
	a.frames++
	a.profiler.markSection("engine")

	strip, matrix := a.engine.Strip(), a.engine.Matrix()
	for _, s := range a.cfg.Sinks {
		if err := s.Show(strip, matrix); err != nil {
			return err
		}
	}
	a.profiler.markSection("sinks")

	if a.cfg.Emitter != nil {
		a.cfg.Emitter.Emit(telemetry.FromSnapshot(a.last))
	}
	a.profiler.markSection("telemetry")
	a.profiler.endFrame()
	return nil
}

// checkSwitch logs a failing switch read once per distinct error. The switch
// keeps reporting its last good level meanwhile.
func (a *App) checkSwitch() {
	sw, ok := a.cfg.Switch.(interface{ Err() error })
	if !ok {
		return
	}
	msg := ""
	if err := sw.Err(); err != nil {
		msg = err.Error()
	}
	if msg != a.swErr && msg != "" {
		a.log.Printf("switch read failed: %s", msg)
	}
	a.swErr = msg
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
