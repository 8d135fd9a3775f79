// Package engine runs one control-loop tick: gain control, bar smoothing,
// peak tracking or the idle rotation, and rendering into both buffers.
package engine

import (
	"time"

	"github.com/guidoenr/ledtree/internal/config"
	"github.com/guidoenr/ledtree/internal/idle"
	"github.com/guidoenr/ledtree/internal/render"
)

// Mode is the operating mode chosen for a tick.
type Mode int

const (
	ModeIdle Mode = iota
	ModeVisualizer
)

func (m Mode) String() string {
	if m == ModeVisualizer {
		return "visualizer"
	}
	return "idle"
}

// SelectMode picks the visualizer only when the switch requests music and the
// raw sample shows the input is alive. There is no hysteresis.
func SelectMode(musicSwitch bool, raw, activityThreshold int) Mode {
	if musicSwitch && raw > activityThreshold {
		return ModeVisualizer
	}
	return ModeIdle
}

// Snapshot is the per-tick diagnostic state.
type Snapshot struct {
	Raw       int
	Amplitude int
	Ceiling   int
	ZeroPoint int
	Height    int
	Peak      int
	Switch    bool
	Mode      Mode
	Pattern   string
	Icon      bool
}

// Engine owns all mutable pipeline state. It is not safe for concurrent use;
// the control loop is its only caller.
type Engine struct {
	cfg       config.Tunables
	zeroPoint int

	gain     *Gain
	height   *HeightTracker
	peak     *PeakTracker
	renderer *render.Renderer
	idle     *idle.Dispatcher

	strip  render.Strip
	matrix *render.Matrix
}

// New creates an engine for a calibrated zero point.
func New(cfg config.Tunables, zeroPoint int, dispatcher *idle.Dispatcher) *Engine {
	return &Engine{
		cfg:       cfg,
		zeroPoint: zeroPoint,
		gain:      NewGain(cfg),
		height:    NewHeightTracker(cfg.StripLength),
		peak:      NewPeakTracker(cfg),
		renderer:  render.New(cfg),
		idle:      dispatcher,
		strip:     render.NewStrip(cfg.StripLength),
		matrix:    render.NewMatrix(cfg.MatrixRows, cfg.MatrixCols),
	}
}

// Strip returns the primary buffer rewritten by the last tick.
func (e *Engine) Strip() render.Strip { return e.strip }

// Matrix returns the secondary buffer rewritten by the last tick.
func (e *Engine) Matrix() *render.Matrix { return e.matrix }

// Tick runs the pipeline once for a raw sample read at now.
func (e *Engine) Tick(now time.Duration, raw int, musicSwitch bool) Snapshot {
	snap := Snapshot{
		Raw:       raw,
		ZeroPoint: e.zeroPoint,
		Switch:    musicSwitch,
		Mode:      SelectMode(musicSwitch, raw, e.cfg.ActivityThreshold),
	}

	if snap.Mode == ModeVisualizer {
		snap.Amplitude = e.gain.Process(raw, e.zeroPoint, now)
		height := e.height.Update(snap.Amplitude, e.gain.Ceiling())
		peak := e.peak.Update(height, now)

		e.renderer.PaintBar(e.strip, height, peak)
		e.renderer.Mirror(e.matrix, height)
	} else {
		snap.Pattern = e.idle.Current().Name()
		snap.Icon = e.idle.Step(now, e.strip, e.matrix)

		// Telemetry keeps looking like audio: the lit extent stands in for
		// the bar and the mean luma for the amplitude.
		highest, mean := render.Scan(e.strip, e.cfg.LuminanceThreshold)
		e.height.Set(highest)
		e.peak.Set(e.height.Height())
		snap.Amplitude = mean * e.cfg.AmplitudeScale
		e.gain.Reset()

		if !snap.Icon {
			e.renderer.Mirror(e.matrix, e.height.Height())
		}
	}

	snap.Ceiling = e.gain.Ceiling()
	snap.Height = e.height.Height()
	snap.Peak = e.peak.Position()
	return snap
}
