package config

import (
	"time"

	"github.com/pkg/errors"
)

// Tunables holds the startup constants shared by the pipeline, the idle
// generators and the display sinks.
type Tunables struct {
	StripLength int
	MatrixRows  int
	MatrixCols  int

	GainFactor     int
	NoiseGate      int
	CeilingDefault int
	CeilingFloor   int
	CeilingDecay   time.Duration

	PeakFall         int
	PeakFallInterval time.Duration

	PatternPeriod time.Duration
	HueInterval   time.Duration
	HueStep       int

	ActivityThreshold int

	CalibrationSamples int
	CalibrationDelay   time.Duration
	CalibrationMin     int
	DefaultZeroPoint   int

	LuminanceThreshold int
	AmplitudeScale     int

	Brightness uint8
	ADCMax     int
}

// Defaults returns the values the strip was tuned with.
func Defaults() Tunables {
	return Tunables{
		StripLength:        300,
		MatrixRows:         8,
		MatrixCols:         12,
		GainFactor:         3,
		NoiseGate:          15,
		CeilingDefault:     100,
		CeilingFloor:       120,
		CeilingDecay:       100 * time.Millisecond,
		PeakFall:           1,
		PeakFallInterval:   30 * time.Millisecond,
		PatternPeriod:      10 * time.Second,
		HueInterval:        20 * time.Millisecond,
		HueStep:            2,
		ActivityThreshold:  50,
		CalibrationSamples: 200,
		CalibrationDelay:   2 * time.Millisecond,
		CalibrationMin:     50,
		DefaultZeroPoint:   512,
		LuminanceThreshold: 10,
		AmplitudeScale:     4,
		Brightness:         150,
		ADCMax:             1023,
	}
}

// Validate reports the first tunable that would make the pipeline misbehave.
func (t Tunables) Validate() error {
	switch {
	case t.StripLength <= 0:
		return errors.Errorf("strip length must be positive (got %d)", t.StripLength)
	case t.MatrixRows <= 0 || t.MatrixCols <= 0:
		return errors.Errorf("invalid matrix geometry %dx%d", t.MatrixRows, t.MatrixCols)
	case t.GainFactor <= 0:
		return errors.Errorf("gain factor must be positive (got %d)", t.GainFactor)
	case t.NoiseGate < 0:
		return errors.Errorf("noise gate must not be negative (got %d)", t.NoiseGate)
	case t.CeilingFloor < 0 || t.CeilingDefault < 0:
		return errors.New("ceiling values must not be negative")
	case t.PeakFall <= 0:
		return errors.Errorf("peak fall must be positive (got %d)", t.PeakFall)
	case t.CalibrationSamples <= 0:
		return errors.Errorf("calibration needs at least one sample (got %d)", t.CalibrationSamples)
	case t.ADCMax <= 0:
		return errors.Errorf("adc max must be positive (got %d)", t.ADCMax)
	}

	intervals := map[string]time.Duration{
		"ceiling decay":      t.CeilingDecay,
		"peak fall interval": t.PeakFallInterval,
		"pattern period":     t.PatternPeriod,
		"hue interval":       t.HueInterval,
	}
	for name, d := range intervals {
		if d <= 0 {
			return errors.Errorf("%s must be positive (got %s)", name, d)
		}
	}
	return nil
}
