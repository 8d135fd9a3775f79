package engine

import (
	"time"

	"github.com/guidoenr/ledtree/internal/cadence"
	"github.com/guidoenr/ledtree/internal/config"
)

// Gain turns raw samples into gated amplitudes and tracks the dynamic
// ceiling used to normalize them.
//
// The ceiling jumps up to any amplitude above it and drifts down by one unit
// per decay interval while it is above the floor, so a quiet passage after a
// loud one eventually fills the strip again.
type Gain struct {
	factor    int
	noiseGate int
	floor     int
	initial   int
	ceiling   int
	decay     *cadence.Gate
}

// NewGain creates a Gain with its ceiling at the configured default.
func NewGain(cfg config.Tunables) *Gain {
	return &Gain{
		factor:    cfg.GainFactor,
		noiseGate: cfg.NoiseGate,
		floor:     cfg.CeilingFloor,
		initial:   cfg.CeilingDefault,
		ceiling:   cfg.CeilingDefault,
		decay:     cadence.New(cfg.CeilingDecay),
	}
}

// Amplitude is the gained distance of raw from the zero point, forced to 0
// below the noise gate.
func Amplitude(raw, zero, factor, noiseGate int) int {
	deviation := raw - zero
	if deviation < 0 {
		deviation = -deviation
	}
	amplitude := deviation * factor
	if amplitude < noiseGate {
		return 0
	}
	return amplitude
}

// Process returns the amplitude for raw and updates the ceiling. The decay
// step is applied before the rise so the ceiling never ends a tick below the
// amplitude it just saw.
func (g *Gain) Process(raw, zero int, now time.Duration) int {
	amplitude := Amplitude(raw, zero, g.factor, g.noiseGate)

	if g.decay.Ready(now) && g.ceiling > g.floor {
		g.ceiling--
	}
	if amplitude > g.ceiling {
		g.ceiling = amplitude
	}
	return amplitude
}

// Ceiling returns the current normalization bound.
func (g *Gain) Ceiling() int { return g.ceiling }

// Reset puts the ceiling back to its default.
func (g *Gain) Reset() { g.ceiling = g.initial }
