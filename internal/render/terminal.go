package render

import (
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

var (
	resetANSI       = "\x1b[0m"
	precomputedANSI [256]string
)

func init() {
	for i := range precomputedANSI {
		precomputedANSI[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
	}
}

// TerminalConfig controls the terminal preview.
type TerminalConfig struct {
	Out        io.Writer
	Width      int
	Glyphs     string
	Brightness uint8
	UseANSI    bool
	Status     func() string
}

// Terminal previews the strip as one row of colored cells and the matrix as
// a small grid underneath it.
type Terminal struct {
	out        io.Writer
	fd         int
	width      int
	glyphs     Glyphs
	brightness uint8
	useANSI    bool
	status     func() string
	builder    strings.Builder
}

// NewTerminal switches the output to the alternate screen and hides the cursor.
func NewTerminal(cfg TerminalConfig) (*Terminal, error) {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Brightness == 0 {
		cfg.Brightness = 255
	}
	t := &Terminal{
		out:        cfg.Out,
		fd:         -1,
		width:      cfg.Width,
		glyphs:     GlyphSet(cfg.Glyphs),
		brightness: cfg.Brightness,
		useANSI:    cfg.UseANSI,
		status:     cfg.Status,
	}
	if f, ok := cfg.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
	}
	t.ensureWidth()
	if t.width <= 0 {
		return nil, errors.Errorf("invalid terminal width %d", t.width)
	}
	if _, err := io.WriteString(t.out, "\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l"); err != nil {
		return nil, errors.Wrap(err, "prepare terminal")
	}
	return t, nil
}

// Show redraws the whole preview.
func (t *Terminal) Show(strip Strip, matrix *Matrix) error {
	t.ensureWidth()

	b := &t.builder
	b.Reset()
	b.WriteString("\x1b[H")
	t.writeStrip(b, strip)
	b.WriteString("\x1b[K\n\n")
	t.writeMatrix(b, matrix)
	if t.status != nil {
		b.WriteString("\n")
		b.WriteString(statusBar(t.status(), t.width))
	}
	_, err := io.WriteString(t.out, b.String())
	return errors.Wrap(err, "write terminal frame")
}

// Close restores the cursor and leaves the alternate screen.
func (t *Terminal) Close() error {
	_, err := io.WriteString(t.out, "\x1b[?25h\x1b[?1049l\x1b[0m")
	return errors.Wrap(err, "restore terminal")
}

func (t *Terminal) ensureWidth() {
	if t.fd < 0 {
		return
	}
	w, _, err := term.GetSize(t.fd)
	if err != nil || w <= 0 {
		return
	}
	t.width = w
}

// writeStrip down-samples the strip to the preview width, keeping the
// brightest cell of each bucket so single-pixel indicators stay visible.
func (t *Terminal) writeStrip(b *strings.Builder, strip Strip) {
	cols := t.width
	if cols > len(strip) {
		cols = len(strip)
	}
	if cols <= 0 {
		return
	}
	lastColor := -1
	for x := 0; x < cols; x++ {
		lo := x * len(strip) / cols
		hi := (x + 1) * len(strip) / cols
		if hi <= lo {
			hi = lo + 1
		}
		best := strip[lo]
		for _, c := range strip[lo:hi] {
			if c.Luma() > best.Luma() {
				best = c
			}
		}
		best = best.Scale(t.brightness)
		if best.Luma() == 0 {
			b.WriteRune(' ')
			continue
		}
		if t.useANSI {
			idx := rgbToANSI(best)
			if idx != lastColor {
				b.WriteString(colorCode(idx))
				lastColor = idx
			}
		}
		b.WriteRune(t.glyphs.Cell)
	}
	if t.useANSI {
		b.WriteString(resetANSI)
	}
}

func (t *Terminal) writeMatrix(b *strings.Builder, m *Matrix) {
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			if m.At(y, x) {
				b.WriteRune(t.glyphs.On)
			} else {
				b.WriteRune(t.glyphs.Off)
			}
			b.WriteRune(' ')
		}
		b.WriteString("\x1b[K\n")
	}
}

func statusBar(text string, width int) string {
	if width <= 0 {
		return text
	}
	if len(text) >= width {
		return text[:width]
	}
	return text + strings.Repeat(" ", width-len(text))
}

func colorCode(index int) string {
	if index < 0 {
		index = 0
	} else if index >= len(precomputedANSI) {
		index = len(precomputedANSI) - 1
	}
	return precomputedANSI[index]
}

func rgbToANSI(c RGB) int {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	bl := float64(c.B) / 255

	// Grayscale ramp for near-neutral colors
	if math.Abs(r-g) < 0.02 && math.Abs(g-bl) < 0.02 {
		gray := clampInt(int(math.Round(r*23)), 0, 23)
		return 232 + gray
	}

	ri := clampInt(int(r*5+0.5), 0, 5)
	gi := clampInt(int(g*5+0.5), 0, 5)
	bi := clampInt(int(bl*5+0.5), 0, 5)

	return 16 + 36*ri + 6*gi + bi
}
