package engine

import (
	"time"

	"github.com/guidoenr/ledtree/internal/cadence"
	"github.com/guidoenr/ledtree/internal/config"
)

// PeakTracker follows the bar upward instantly and lets the indicator fall
// one step per fall interval while the bar is not pushing it.
type PeakTracker struct {
	top  int
	fall int
	pos  int
	gate *cadence.Gate
}

// NewPeakTracker creates a tracker bounded to the strip.
func NewPeakTracker(cfg config.Tunables) *PeakTracker {
	return &PeakTracker{
		top:  cfg.StripLength - 1,
		fall: cfg.PeakFall,
		gate: cadence.New(cfg.PeakFallInterval),
	}
}

// Update feeds the displayed height observed at now.
func (p *PeakTracker) Update(height int, now time.Duration) int {
	if height > p.pos {
		p.pos = height
	} else if p.gate.Ready(now) && p.pos > 0 {
		p.pos -= p.fall
	}
	p.pos = clampInt(p.pos, 0, p.top)
	return p.pos
}

// Position returns the indicator cell.
func (p *PeakTracker) Position() int { return p.pos }

// Set overrides the indicator position.
func (p *PeakTracker) Set(v int) { p.pos = clampInt(v, 0, p.top) }
