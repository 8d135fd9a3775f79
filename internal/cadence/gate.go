// Package cadence provides elapsed-time gates evaluated inside the control
// loop instead of separate timers.
package cadence

import "time"

// Gate permits an action at most once per interval of the loop clock.
//
// The first query arms the gate and does not fire. After that, Ready fires
// whenever at least one interval has elapsed since the last firing and
// restarts the interval from the current time, so a delayed tick fires once
// rather than catching up.
type Gate struct {
	interval time.Duration
	last     time.Duration
	armed    bool
}

// New returns an unarmed gate.
func New(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Ready reports whether the gate fires at now.
func (g *Gate) Ready(now time.Duration) bool {
	if !g.armed {
		g.armed = true
		g.last = now
		return false
	}
	if now-g.last < g.interval {
		return false
	}
	g.last = now
	return true
}
