// Package input provides the mode switch: the single binary signal that
// requests visualizer mode.
package input

import "sync/atomic"

// Switch reports whether music mode is requested. It is polled once per tick.
type Switch interface {
	MusicMode() bool
}

// Fixed is a switch wired permanently on or off.
type Fixed bool

func (f Fixed) MusicMode() bool { return bool(f) }

// Toggle is a switch flipped from another goroutine.
type Toggle struct {
	on atomic.Bool
}

// NewToggle returns a toggle in the given position.
func NewToggle(on bool) *Toggle {
	t := &Toggle{}
	t.on.Store(on)
	return t
}

func (t *Toggle) MusicMode() bool { return t.on.Load() }

// Flip inverts the switch and returns the new position.
func (t *Toggle) Flip() bool {
	for {
		old := t.on.Load()
		if t.on.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Set moves the switch.
func (t *Toggle) Set(on bool) { t.on.Store(on) }
