// Package idle runs the generative animations shown while no music is
// detected.
package idle

import (
	"math/rand"
	"time"

	"github.com/guidoenr/ledtree/internal/cadence"
	"github.com/guidoenr/ledtree/internal/config"
	"github.com/guidoenr/ledtree/internal/render"
)

// Dispatcher time-slices between generators in a fixed rotation.
type Dispatcher struct {
	gens   []Generator
	index  int
	rotate *cadence.Gate
	hueAdv *cadence.Gate
	hue    uint8
}

// NewDispatcher builds the standard eleven-pattern rotation.
func NewDispatcher(cfg config.Tunables, rng *rand.Rand) *Dispatcher {
	return NewDispatcherWith(Patterns(rng), cfg.PatternPeriod, cfg.HueInterval)
}

// NewDispatcherWith rotates through gens every period and advances the
// shared hue counter every hueInterval.
func NewDispatcherWith(gens []Generator, period, hueInterval time.Duration) *Dispatcher {
	return &Dispatcher{
		gens:   gens,
		rotate: cadence.New(period),
		hueAdv: cadence.New(hueInterval),
	}
}

// Index returns the active generator position.
func (d *Dispatcher) Index() int { return d.index }

// Current returns the active generator.
func (d *Dispatcher) Current() Generator { return d.gens[d.index] }

// Hue returns the shared rotating hue counter.
func (d *Dispatcher) Hue() uint8 { return d.hue }

// Len returns the number of generators in the rotation.
func (d *Dispatcher) Len() int { return len(d.gens) }

// Step paints one frame with the active generator, clears the matrix and lets
// the generator draw its icon. It reports whether an icon was drawn; when it
// was not, the caller mirrors the strip instead. Rotation and hue cadences
// are evaluated after painting.
func (d *Dispatcher) Step(now time.Duration, strip render.Strip, matrix *render.Matrix) bool {
	gen := d.gens[d.index]
	f := Frame{Now: now, Hue: d.hue}
	gen.Paint(strip, f)

	matrix.Clear()
	icon, ok := gen.(IconPainter)
	if ok {
		icon.Icon(matrix, f)
	}

	if d.rotate.Ready(now) {
		d.index = (d.index + 1) % len(d.gens)
	}
	if d.hueAdv.Ready(now) {
		d.hue++
	}
	return ok
}
