package input

import (
	"context"
	"sync"

	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
)

// Event is a keyboard command other than the switch itself.
type Event int

const (
	EventQuit Event = iota
	EventToggled
)

// Keyboard drives a Toggle from the terminal: space flips the switch, q, Esc
// and Ctrl-C quit.
type Keyboard struct {
	*Toggle
	events    chan Event
	closeOnce sync.Once
	release   func() error
}

// OpenKeyboard puts the terminal in raw mode and starts listening until ctx
// is cancelled. The returned Events channel is closed when listening stops.
func OpenKeyboard(ctx context.Context, initial bool) (*Keyboard, error) {
	if err := keyboard.Open(); err != nil {
		return nil, errors.Wrap(err, "open keyboard")
	}

	k := newKeyboard(initial, keyboard.Close)
	go func() {
		<-ctx.Done()
		_ = k.Close()
	}()

	go func() {
		defer close(k.events)
		defer k.Close()
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch {
			case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC:
				k.events <- EventQuit
				return
			case char == 'q' || char == 'Q':
				k.events <- EventQuit
				return
			case key == keyboard.KeySpace || char == 'm' || char == 'M':
				k.Flip()
				select {
				case k.events <- EventToggled:
				default:
				}
			}
		}
	}()

	return k, nil
}

func newKeyboard(initial bool, release func() error) *Keyboard {
	return &Keyboard{
		Toggle:  NewToggle(initial),
		events:  make(chan Event, 16),
		release: release,
	}
}

// Close restores the terminal mode. It is safe to call more than once and
// from any goroutine.
func (k *Keyboard) Close() error {
	var err error
	k.closeOnce.Do(func() {
		err = errors.Wrap(k.release(), "close keyboard")
	})
	return err
}

// Events delivers quit and toggle notifications.
func (k *Keyboard) Events() <-chan Event { return k.events }
