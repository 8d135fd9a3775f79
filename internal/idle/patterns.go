package idle

import (
	"math"
	"math/rand"
	"time"

	"github.com/guidoenr/ledtree/internal/render"
)

// Frame is what a generator gets to paint one tick.
type Frame struct {
	Now time.Duration
	Hue uint8
}

// Generator paints one frame of an idle animation into the strip. The strip
// keeps its previous contents, so fading generators build on the last frame.
type Generator interface {
	Name() string
	Paint(strip render.Strip, f Frame)
}

// IconPainter is implemented by generators that draw their own matrix icon
// instead of the strip mirror.
type IconPainter interface {
	Icon(m *render.Matrix, f Frame)
}

// Patterns returns the eleven idle generators in rotation order.
func Patterns(rng *rand.Rand) []Generator {
	return []Generator{
		&rainbowGlitter{rng: rng},
		&confetti{rng: rng},
		&sinelon{},
		&bpm{},
		&juggle{},
		&fire{rng: rng},
		&snow{rng: rng},
		&twinkle{rng: rng},
		&police{},
		&breathing{},
		&candyCane{},
	}
}

// PatternNames lists the generator names in rotation order.
func PatternNames() []string {
	gens := Patterns(rand.New(rand.NewSource(1)))
	names := make([]string, len(gens))
	for i, g := range gens {
		names[i] = g.Name()
	}
	return names
}

type rainbowGlitter struct {
	rng *rand.Rand
}

func (p *rainbowGlitter) Name() string { return "rainbow" }

func (p *rainbowGlitter) Paint(strip render.Strip, f Frame) {
	for i := range strip {
		strip[i] = render.HSV(f.Hue+uint8(i*7), 240, 255)
	}
	if p.rng.Intn(256) < 80 {
		pos := p.rng.Intn(len(strip))
		strip[pos] = strip[pos].Add(render.White)
	}
}

// Icon scrolls diagonal bands.
func (p *rainbowGlitter) Icon(m *render.Matrix, f Frame) {
	offset := int(millis(f.Now) / 100)
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			if (x+y+offset)%4 == 0 {
				m.Set(y, x)
			}
		}
	}
}

type confetti struct {
	rng *rand.Rand
}

func (p *confetti) Name() string { return "confetti" }

func (p *confetti) Paint(strip render.Strip, f Frame) {
	strip.FadeToBlackBy(10)
	pos := p.rng.Intn(len(strip))
	strip[pos] = strip[pos].Add(render.HSV(f.Hue+uint8(p.rng.Intn(64)), 200, 255))
}

// Icon sprinkles random sparkles.
func (p *confetti) Icon(m *render.Matrix, f Frame) {
	for i := 0; i < 15; i++ {
		m.Set(p.rng.Intn(m.Rows()), p.rng.Intn(m.Cols()))
	}
}

// sinelon sweeps a dot back and forth leaving a trail.
type sinelon struct {
	pos int
}

func (p *sinelon) Name() string { return "sinelon" }

func (p *sinelon) Paint(strip render.Strip, f Frame) {
	strip.FadeToBlackBy(20)
	p.pos = int(beatsin16(13, 0, uint16(len(strip)-1), f.Now))
	strip[p.pos] = strip[p.pos].Add(render.HSV(f.Hue, 255, 192))
}

// Icon is a vertical scanner bar.
func (p *sinelon) Icon(m *render.Matrix, f Frame) {
	x := int(beatsin8(30, 0, uint8(m.Cols()-1), f.Now))
	for y := 0; y < m.Rows(); y++ {
		m.Set(y, x)
	}
}

type bpm struct{}

func (p *bpm) Name() string { return "bpm" }

func (p *bpm) Paint(strip render.Strip, f Frame) {
	beat := beatsin8(62, 64, 255, f.Now)
	for i := range strip {
		strip[i] = render.PartyColors.At(f.Hue+uint8(i*2), beat-f.Hue+uint8(i*10))
	}
}

var heartIcon = [][2]int{
	{1, 2}, {1, 3}, {1, 8}, {1, 9},
	{2, 1}, {2, 4}, {2, 7}, {2, 10},
	{3, 1}, {3, 10},
	{4, 2}, {4, 9},
	{5, 3}, {5, 8},
	{6, 4}, {6, 7},
	{7, 5}, {7, 6},
}

// Icon is a heart outline.
func (p *bpm) Icon(m *render.Matrix, f Frame) {
	for _, c := range heartIcon {
		m.Set(c[0], c[1])
	}
}

type juggle struct{}

func (p *juggle) Name() string { return "juggle" }

func (p *juggle) Paint(strip render.Strip, f Frame) {
	strip.FadeToBlackBy(20)
	var dotHue uint8
	for i := 0; i < 8; i++ {
		pos := beatsin16(uint16(i+7), 0, uint16(len(strip)-1), f.Now)
		strip[pos] = strip[pos].Or(render.HSV(dotHue, 200, 255))
		dotHue += 32
	}
}

// Icon bounces three dots at different speeds.
func (p *juggle) Icon(m *render.Matrix, f Frame) {
	top := uint8(m.Rows() - 1)
	for _, ball := range []struct {
		bpm uint16
		col int
	}{{30, 2}, {38, 6}, {48, 10}} {
		y := int(beatsin8(ball.bpm, 0, top, f.Now))
		m.Set(int(top)-y, ball.col)
	}
}

type fire struct {
	rng *rand.Rand
}

func (p *fire) Name() string { return "fire" }

func (p *fire) Paint(strip render.Strip, f Frame) {
	t := millis(f.Now) / 5
	for i := range strip {
		strip[i] = render.HeatColors.At(noise8(uint32(i*30), t), 255)
	}
}

// Icon keeps the bottom two rows lit and flickers the three above.
func (p *fire) Icon(m *render.Matrix, f Frame) {
	rows := m.Rows()
	for x := 0; x < m.Cols(); x++ {
		m.Set(rows-1, x)
		m.Set(rows-2, x)
	}
	for i := 0; i < 8; i++ {
		m.Set(rows-5+p.rng.Intn(3), p.rng.Intn(m.Cols()))
	}
}

var snowBackground = render.RGB{R: 0, G: 10, B: 40}

type snow struct {
	rng *rand.Rand
}

func (p *snow) Name() string { return "snow" }

func (p *snow) Paint(strip render.Strip, f Frame) {
	strip.Fill(snowBackground)
	if p.rng.Intn(256) < 40 {
		strip[p.rng.Intn(len(strip))] = render.White
	}
}

// Icon drops one flake per column, staggered.
func (p *snow) Icon(m *render.Matrix, f Frame) {
	offset := int(millis(f.Now) / 200)
	for x := 0; x < m.Cols(); x++ {
		m.Set((offset+x*3)%m.Rows(), x)
	}
}

type twinkle struct {
	rng *rand.Rand
}

func (p *twinkle) Name() string { return "twinkle" }

func (p *twinkle) Paint(strip render.Strip, f Frame) {
	strip.FadeToBlackBy(5)
	if p.rng.Intn(256) < 60 {
		strip[p.rng.Intn(len(strip))] = render.HSV(45, 100, 200)
	}
}

// Icon alternates two sparse star sets.
func (p *twinkle) Icon(m *render.Matrix, f Frame) {
	if (millis(f.Now)/250)%2 == 0 {
		m.Set(2, 2)
		m.Set(2, 9)
		m.Set(6, 5)
		return
	}
	m.Set(4, 2)
	m.Set(1, 6)
	m.Set(5, 10)
}

type police struct{}

func (p *police) Name() string { return "police" }

func (p *police) Paint(strip render.Strip, f Frame) {
	if (millis(f.Now)/200)%2 == 0 {
		strip.Fill(render.Red)
		return
	}
	strip.Fill(render.Blue)
}

// Icon flashes the left and right halves.
func (p *police) Icon(m *render.Matrix, f Frame) {
	half := m.Cols() / 2
	lo, hi := 0, half
	if (millis(f.Now)/200)%2 != 0 {
		lo, hi = half, m.Cols()
	}
	for y := 0; y < m.Rows(); y++ {
		for x := lo; x < hi; x++ {
			m.Set(y, x)
		}
	}
}

type breathing struct{}

func (p *breathing) Name() string { return "breathing" }

func (p *breathing) Paint(strip render.Strip, f Frame) {
	ms := float64(millis(f.Now))
	breath := (math.Exp(math.Sin(ms/2000.0*math.Pi)) - 0.36787944) * 108.0
	strip.Fill(render.HSV(f.Hue, 255, uint8(clampFloat(breath, 0, 255))))
}

// Icon grows and shrinks a box around the centre.
func (p *breathing) Icon(m *render.Matrix, f Frame) {
	size := int(beatsin8(20, 1, 4, f.Now))
	cx, cy := m.Cols()/2, m.Rows()/2
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			if absInt(x-cx) < size && absInt(y-cy) < size {
				m.Set(y, x)
			}
		}
	}
}

type candyCane struct{}

func (p *candyCane) Name() string { return "candycane" }

func (p *candyCane) Paint(strip render.Strip, f Frame) {
	offset := int(millis(f.Now) / 50)
	for i := range strip {
		if (i+offset)%20 < 10 {
			strip[i] = render.Red
		} else {
			strip[i] = render.White
		}
	}
}

// Icon scrolls wide diagonal stripes.
func (p *candyCane) Icon(m *render.Matrix, f Frame) {
	offset := int(millis(f.Now) / 150)
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			if (x+y+offset)%6 < 3 {
				m.Set(y, x)
			}
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
