package config

import (
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Tunables){
		"strip":   func(c *Tunables) { c.StripLength = 0 },
		"matrix":  func(c *Tunables) { c.MatrixCols = 0 },
		"gain":    func(c *Tunables) { c.GainFactor = -1 },
		"gate":    func(c *Tunables) { c.NoiseGate = -1 },
		"decay":   func(c *Tunables) { c.CeilingDecay = 0 },
		"peak":    func(c *Tunables) { c.PeakFallInterval = -time.Millisecond },
		"samples": func(c *Tunables) { c.CalibrationSamples = 0 },
	}
	for name, mutate := range cases {
		cfg := Defaults()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
