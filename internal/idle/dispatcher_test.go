package idle

import (
	"math/rand"
	"testing"
	"time"

	"github.com/guidoenr/ledtree/internal/config"
	"github.com/guidoenr/ledtree/internal/render"
)

func TestRotationOrderAndWrap(t *testing.T) {
	cfg := config.Defaults()
	d := NewDispatcher(cfg, rand.New(rand.NewSource(1)))
	if d.Len() != 11 {
		t.Fatalf("patterns=%d want=11", d.Len())
	}
	strip := render.NewStrip(cfg.StripLength)
	matrix := render.NewMatrix(cfg.MatrixRows, cfg.MatrixCols)

	var seen []int
	last := -1
	for now := time.Duration(0); now <= 125*time.Second; now += 20 * time.Millisecond {
		if d.Index() != last {
			seen = append(seen, d.Index())
			last = d.Index()
		}
		d.Step(now, strip, matrix)
	}

	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 0, 1}
	if len(seen) != len(want) {
		t.Fatalf("seen=%v want=%v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen=%v want=%v", seen, want)
		}
	}
}

func TestRotationOnlyAtCadence(t *testing.T) {
	cfg := config.Defaults()
	d := NewDispatcher(cfg, rand.New(rand.NewSource(1)))
	strip := render.NewStrip(cfg.StripLength)
	matrix := render.NewMatrix(cfg.MatrixRows, cfg.MatrixCols)

	d.Step(0, strip, matrix)
	d.Step(9999*time.Millisecond, strip, matrix)
	if d.Index() != 0 {
		t.Fatalf("rotated early to %d", d.Index())
	}
	// a long stall advances once, not several times
	d.Step(45*time.Second, strip, matrix)
	if d.Index() != 1 {
		t.Fatalf("index=%d want=1", d.Index())
	}
}

func TestHueAdvancesOnCadence(t *testing.T) {
	cfg := config.Defaults()
	d := NewDispatcher(cfg, rand.New(rand.NewSource(1)))
	strip := render.NewStrip(cfg.StripLength)
	matrix := render.NewMatrix(cfg.MatrixRows, cfg.MatrixCols)
	for now := time.Duration(0); now <= time.Second; now += 5 * time.Millisecond {
		d.Step(now, strip, matrix)
	}
	if d.Hue() != 50 {
		t.Fatalf("hue=%d want=50", d.Hue())
	}
}

func TestEveryPatternPaintsAndDrawsIcon(t *testing.T) {
	cfg := config.Defaults()
	rng := rand.New(rand.NewSource(3))
	for _, gen := range Patterns(rng) {
		strip := render.NewStrip(cfg.StripLength)
		matrix := render.NewMatrix(cfg.MatrixRows, cfg.MatrixCols)
		for now := time.Duration(0); now < 2*time.Second; now += 10 * time.Millisecond {
			f := Frame{Now: now, Hue: uint8(now / (20 * time.Millisecond))}
			gen.Paint(strip, f)
			matrix.Clear()
			gen.(IconPainter).Icon(matrix, f)
		}
		if matrix.Lit() == 0 {
			t.Fatalf("%s: empty icon", gen.Name())
		}
		highest, mean := render.Scan(strip, -1)
		if highest < 0 || mean < 0 {
			t.Fatalf("%s: bad scan", gen.Name())
		}
	}
}

func TestPoliceAlternates(t *testing.T) {
	strip := render.NewStrip(10)
	p := &police{}
	p.Paint(strip, Frame{Now: 0})
	if strip[0] != render.Red {
		t.Fatalf("want red, got %+v", strip[0])
	}
	p.Paint(strip, Frame{Now: 200 * time.Millisecond})
	if strip[9] != render.Blue {
		t.Fatalf("want blue, got %+v", strip[9])
	}
}

func TestBeatsinBounds(t *testing.T) {
	for ms := 0; ms < 5000; ms += 3 {
		now := time.Duration(ms) * time.Millisecond
		if v := beatsin8(30, 0, 11, now); v > 11 {
			t.Fatalf("beatsin8=%d out of range", v)
		}
		if v := beatsin16(13, 0, 299, now); v > 299 {
			t.Fatalf("beatsin16=%d out of range", v)
		}
		if v := beatsin8(20, 1, 4, now); v < 1 || v > 4 {
			t.Fatalf("breathing size=%d out of range", v)
		}
	}
}
