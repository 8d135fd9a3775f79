package input

import (
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// GPIO reads the switch from an active-high input line with the pull-up
// enabled, so an unconnected switch reads as music mode.
type GPIO struct {
	line *gpiocdev.Line
	last bool
	err  error
}

// OpenGPIO requests offset on chip (e.g. "gpiochip0") as an input.
func OpenGPIO(chip string, offset int) (*GPIO, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithConsumer("ledtree"))
	if err != nil {
		return nil, errors.Wrapf(err, "request %s line %d", chip, offset)
	}
	return &GPIO{line: line}, nil
}

// MusicMode returns the line level. A failed read keeps the previous level;
// the error is kept for Err.
func (g *GPIO) MusicMode() bool {
	v, err := g.line.Value()
	if err != nil {
		g.err = err
		return g.last
	}
	g.err = nil
	g.last = v == 1
	return g.last
}

// Err returns the error from the most recent read, if any.
func (g *GPIO) Err() error { return g.err }

// Close releases the line.
func (g *GPIO) Close() error {
	return errors.Wrap(g.line.Close(), "release gpio line")
}
