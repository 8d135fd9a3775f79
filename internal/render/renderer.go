package render

import (
	"errors"

	"github.com/guidoenr/ledtree/internal/config"
)

// ErrRendererQuit is returned by a sink whose window was closed by the user.
var ErrRendererQuit = errors.New("renderer quit")

// Sink receives both buffers once per tick as full replacements.
type Sink interface {
	Show(strip Strip, matrix *Matrix) error
	Close() error
}

// Renderer paints the visualizer bar and derives the matrix mirror.
type Renderer struct {
	stripLength int
	hueStep     int
	hue         uint8
}

// New creates a Renderer for the configured strip.
func New(cfg config.Tunables) *Renderer {
	return &Renderer{
		stripLength: cfg.StripLength,
		hueStep:     cfg.HueStep,
	}
}

// Hue returns the visualizer color-cycle counter.
func (r *Renderer) Hue() uint8 { return r.hue }

// PaintBar clears the strip and draws a rainbow bar of the given height with
// a white indicator at peak. The color cycle advances once per call.
func (r *Renderer) PaintBar(strip Strip, height, peak int) {
	strip.Clear()
	r.hue++

	height = clampInt(height, 0, len(strip))
	for i := 0; i < height; i++ {
		strip[i] = HSV(r.hue+uint8(i*r.hueStep), 255, 255)
	}
	if peak > 0 && peak < len(strip) {
		strip[peak] = White
	}
}

// Mirror clears the matrix and fills it bottom-up to the scaled height.
func (r *Renderer) Mirror(m *Matrix, height int) {
	m.Clear()
	m.FillBottom(MirrorHeight(height, r.stripLength, m.Rows()))
}

// MirrorHeight scales a strip height onto rows, rounding to the nearest row.
func MirrorHeight(height, stripLength, rows int) int {
	if stripLength <= 0 {
		return 0
	}
	height = clampInt(height, 0, stripLength)
	return clampInt((height*rows*2+stripLength)/(stripLength*2), 0, rows)
}

// Scan returns the index of the highest cell whose luma exceeds threshold
// (0 when none does) and the mean luma of the strip.
func Scan(strip Strip, threshold int) (highest, mean int) {
	if len(strip) == 0 {
		return 0, 0
	}
	total := 0
	for i, c := range strip {
		l := c.Luma()
		if l > threshold {
			highest = i
		}
		total += l
	}
	return highest, total / len(strip)
}
