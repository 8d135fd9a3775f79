package cadence

import (
	"testing"
	"time"
)

func TestGateArmsOnFirstQuery(t *testing.T) {
	g := New(100 * time.Millisecond)
	if g.Ready(0) {
		t.Fatalf("gate fired on first query")
	}
	if g.Ready(99 * time.Millisecond) {
		t.Fatalf("gate fired before interval elapsed")
	}
	if !g.Ready(100 * time.Millisecond) {
		t.Fatalf("gate did not fire after interval")
	}
}

func TestGateDoesNotCatchUpAfterDelay(t *testing.T) {
	g := New(30 * time.Millisecond)
	g.Ready(0)
	if !g.Ready(300 * time.Millisecond) {
		t.Fatalf("expected fire after long delay")
	}
	if g.Ready(301 * time.Millisecond) {
		t.Fatalf("gate re-fired for the same elapsed interval")
	}
}

func TestGateFiresUnderFastTicks(t *testing.T) {
	g := New(30 * time.Millisecond)
	fired := 0
	for now := time.Duration(0); now <= 300*time.Millisecond; now += time.Millisecond {
		if g.Ready(now) {
			fired++
		}
	}
	if fired != 10 {
		t.Fatalf("fired=%d want=10", fired)
	}
}
