// Package sampler reads the analog input and calibrates its zero point.
package sampler

import (
	"context"
	"log"
	"time"

	"github.com/guidoenr/ledtree/internal/config"
	"gonum.org/v1/gonum/stat"
)

// Source yields one raw sample in ADC units per call.
type Source interface {
	Read() int
}

// Calibration describes how the zero point was obtained.
type Calibration struct {
	ZeroPoint int
	Mean      float64
	StdDev    float64
	Fallback  bool
}

// Calibrate averages cfg.CalibrationSamples readings taken
// cfg.CalibrationDelay apart. A mean below cfg.CalibrationMin means the input
// is dead or disconnected, and cfg.DefaultZeroPoint is used instead.
// Cancelling ctx stops sampling early and calibrates from what was read.
func Calibrate(ctx context.Context, src Source, cfg config.Tunables, logger *log.Logger) Calibration {
	samples := make([]float64, 0, cfg.CalibrationSamples)

	var tick <-chan time.Time
	if cfg.CalibrationDelay > 0 {
		ticker := time.NewTicker(cfg.CalibrationDelay)
		defer ticker.Stop()
		tick = ticker.C
	}

collect:
	for i := 0; i < cfg.CalibrationSamples; i++ {
		samples = append(samples, float64(src.Read()))
		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			break collect
		case <-tick:
		}
	}

	cal := ZeroPointFrom(samples, cfg)
	if logger != nil {
		if cal.Fallback {
			logger.Printf("calibration mean %.1f below %d, input looks disconnected; using zero point %d",
				cal.Mean, cfg.CalibrationMin, cal.ZeroPoint)
		} else {
			logger.Printf("calibrated zero point %d (stddev %.2f over %d samples)", cal.ZeroPoint, cal.StdDev, len(samples))
		}
	}
	return cal
}

// ZeroPointFrom derives the zero point from calibration readings.
func ZeroPointFrom(samples []float64, cfg config.Tunables) Calibration {
	if len(samples) == 0 {
		return Calibration{ZeroPoint: cfg.DefaultZeroPoint, Fallback: true}
	}
	mean, std := stat.MeanStdDev(samples, nil)
	cal := Calibration{
		ZeroPoint: int(mean),
		Mean:      mean,
		StdDev:    std,
	}
	if cal.ZeroPoint < cfg.CalibrationMin {
		cal.ZeroPoint = cfg.DefaultZeroPoint
		cal.Fallback = true
	}
	return cal
}

// ToADC converts a normalized sample in [-1, 1] to ADC units around the
// mid-scale bias.
func ToADC(v float32, adcMax int) int {
	mid := float32(adcMax+1) / 2
	out := int(mid + v*mid)
	if out < 0 {
		return 0
	}
	if out > adcMax {
		return adcMax
	}
	return out
}
