// Package telemetry serializes the per-tick diagnostic scalars and fans them
// out to serial, stdout and websocket listeners.
package telemetry

import (
	"strconv"
	"strings"

	"github.com/guidoenr/ledtree/internal/engine"
	"github.com/pkg/errors"
)

// Record is one tick of telemetry.
type Record struct {
	Raw       int    `json:"raw"`
	Amplitude int    `json:"amplitude"`
	Ceiling   int    `json:"ceiling"`
	ZeroPoint int    `json:"zeroPoint"`
	Height    int    `json:"height"`
	Peak      int    `json:"peak"`
	Switch    bool   `json:"switch"`
	Mode      string `json:"mode"`
	Pattern   string `json:"pattern,omitempty"`
}

// FromSnapshot copies the engine's view of a tick.
func FromSnapshot(s engine.Snapshot) Record {
	return Record{
		Raw:       s.Raw,
		Amplitude: s.Amplitude,
		Ceiling:   s.Ceiling,
		ZeroPoint: s.ZeroPoint,
		Height:    s.Height,
		Peak:      s.Peak,
		Switch:    s.Switch,
		Mode:      s.Mode.String(),
		Pattern:   s.Pattern,
	}
}

// AppendLine appends the comma-separated line
// raw,amplitude,ceiling,zero_point,height,peak[,switch] and a newline.
// Reduced lines omit the trailing switch flag.
func (r Record) AppendLine(dst []byte, reduced bool) []byte {
	fields := [...]int{r.Raw, r.Amplitude, r.Ceiling, r.ZeroPoint, r.Height, r.Peak}
	for i, v := range fields {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendInt(dst, int64(v), 10)
	}
	if !reduced {
		dst = append(dst, ',')
		if r.Switch {
			dst = append(dst, '1')
		} else {
			dst = append(dst, '0')
		}
	}
	return append(dst, '\n')
}

// ParseLine reads a line produced by AppendLine. Mode and Pattern are not
// carried on the wire and stay empty.
func ParseLine(line string) (Record, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 6 && len(parts) != 7 {
		return Record{}, errors.Errorf("telemetry line has %d fields", len(parts))
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Record{}, errors.Wrapf(err, "field %d", i)
		}
		vals[i] = v
	}
	r := Record{
		Raw:       vals[0],
		Amplitude: vals[1],
		Ceiling:   vals[2],
		ZeroPoint: vals[3],
		Height:    vals[4],
		Peak:      vals[5],
	}
	if len(vals) == 7 {
		r.Switch = vals[6] == 1
	}
	return r, nil
}
