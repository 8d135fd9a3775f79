//go:build !sdl

package render

import "github.com/pkg/errors"

// Window is unavailable without the sdl build tag.
type Window struct{}

func NewWindow(title string, stripLength, rows, cols int, brightness uint8) (*Window, error) {
	return nil, errors.New("SDL backend not enabled; rebuild with -tags sdl")
}

func (w *Window) Show(strip Strip, matrix *Matrix) error { return ErrRendererQuit }

func (w *Window) Close() error { return nil }

func SupportsSDL() bool { return false }
