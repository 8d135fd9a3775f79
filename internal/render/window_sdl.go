//go:build sdl

package render

import (
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	stripCellWidth  = 3
	stripCellHeight = 24
	matrixCellSize  = 20
	windowPadding   = 12
)

// Window previews both buffers in an SDL window.
type Window struct {
	window     *sdl.Window
	renderer   *sdl.Renderer
	brightness uint8
	title      string
}

// NewWindow opens a window sized for a strip of stripLength cells and a
// rows x cols matrix.
func NewWindow(title string, stripLength, rows, cols int, brightness uint8) (*Window, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init SDL video")
	}
	width := stripLength*stripCellWidth + 2*windowPadding
	height := stripCellHeight + rows*matrixCellSize + 3*windowPadding

	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width), int32(height),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, errors.Wrap(err, "create window")
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, errors.Wrap(err, "create renderer")
	}
	if brightness == 0 {
		brightness = 255
	}
	return &Window{window: window, renderer: renderer, brightness: brightness, title: title}, nil
}

// Show draws one frame and drains pending window events.
func (w *Window) Show(strip Strip, matrix *Matrix) error {
	r := w.renderer
	if err := r.SetDrawColor(0, 0, 0, 255); err != nil {
		return errors.Wrap(err, "set draw color")
	}
	if err := r.Clear(); err != nil {
		return errors.Wrap(err, "clear")
	}

	for i, c := range strip {
		c = c.Scale(w.brightness)
		_ = r.SetDrawColor(c.R, c.G, c.B, 255)
		_ = r.FillRect(&sdl.Rect{
			X: int32(windowPadding + i*stripCellWidth),
			Y: windowPadding,
			W: stripCellWidth,
			H: stripCellHeight,
		})
	}

	top := int32(2*windowPadding + stripCellHeight)
	for y := 0; y < matrix.Rows(); y++ {
		for x := 0; x < matrix.Cols(); x++ {
			if matrix.At(y, x) {
				_ = r.SetDrawColor(255, 60, 40, 255)
			} else {
				_ = r.SetDrawColor(30, 30, 30, 255)
			}
			_ = r.FillRect(&sdl.Rect{
				X: int32(windowPadding + x*matrixCellSize + 1),
				Y: top + int32(y*matrixCellSize+1),
				W: matrixCellSize - 2,
				H: matrixCellSize - 2,
			})
		}
	}
	r.Present()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event.(type) {
		case *sdl.QuitEvent:
			return ErrRendererQuit
		}
	}
	return nil
}

// Close destroys the window and shuts the video subsystem down.
func (w *Window) Close() error {
	if w.renderer != nil {
		w.renderer.Destroy()
		w.renderer = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return nil
}

func SupportsSDL() bool { return true }
