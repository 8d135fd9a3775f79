package engine

import (
	"testing"

	"github.com/guidoenr/ledtree/internal/config"
)

func TestTargetHeight(t *testing.T) {
	cases := []struct {
		amp, ceiling, want int
	}{
		{0, 100, 0},
		{50, 100, 150},
		{100, 100, 300},
		{114, 100, 300},
		{10, 0, 0},
		{10, -5, 0},
		{1, 120, 2},
	}
	for _, tc := range cases {
		if got := TargetHeight(tc.amp, tc.ceiling, 300); got != tc.want {
			t.Fatalf("TargetHeight(%d,%d)=%d want=%d", tc.amp, tc.ceiling, got, tc.want)
		}
	}
}

func TestHeightStepResponse(t *testing.T) {
	h := NewHeightTracker(300)
	if got := h.Update(60, 120); got != 150 {
		t.Fatalf("rise: got=%d want=150", got)
	}

	prev := h.Height()
	ticks := 0
	for h.Height() > 0 {
		got := h.Update(0, 120)
		if want := prev * 15 / 16; got != want {
			t.Fatalf("tick %d: got=%d want=%d", ticks, got, want)
		}
		prev = got
		ticks++
		if ticks > 100 {
			t.Fatalf("height did not reach zero")
		}
	}
}

func TestHeightStaysInRange(t *testing.T) {
	h := NewHeightTracker(300)
	for _, amp := range []int{0, 5000, 120, 1, 99999, 0} {
		got := h.Update(amp, 120)
		if got < 0 || got > 300 {
			t.Fatalf("height %d out of range", got)
		}
	}
}

func TestSilenceDecaysRegardlessOfPrior(t *testing.T) {
	g := NewGain(config.Defaults())
	h := NewHeightTracker(300)
	h.Set(280)
	amp := g.Process(512, 512, 0)
	if amp != 0 {
		t.Fatalf("amp=%d want=0", amp)
	}
	if got := h.Update(amp, g.Ceiling()); got != 262 {
		t.Fatalf("height=%d want=262", got)
	}
}
