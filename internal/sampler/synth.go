package sampler

import (
	"math"
	"math/rand"
	"time"
)

// Synth fakes a music signal for running without hardware: a bass pulse, a
// slower swell and a little noise around the mid-scale bias.
type Synth struct {
	rng       *rand.Rand
	tick      float64
	adcMax    int
	phaseBeat float64
	phaseBody float64
	phaseHigh float64
}

// NewSynth creates a generator advancing tick seconds per Read.
func NewSynth(tick time.Duration, adcMax int, seed int64) *Synth {
	return &Synth{
		rng:    rand.New(rand.NewSource(seed)),
		tick:   tick.Seconds(),
		adcMax: adcMax,
	}
}

func (s *Synth) Read() int {
	s.phaseBeat += s.tick * 2 * math.Pi * 2.0
	s.phaseBody += s.tick * 0.7
	s.phaseHigh += s.tick * 2 * math.Pi * 37.0

	beat := math.Pow(math.Max(0, math.Sin(s.phaseBeat)), 6)
	body := 0.25 + 0.2*math.Sin(s.phaseBody)
	carrier := math.Sin(s.phaseHigh)
	noise := (s.rng.Float64() - 0.5) * 0.02

	v := carrier*(beat*0.6+body*0.3) + noise
	return ToADC(float32(clamp(v, -1, 1)), s.adcMax)
}

func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
