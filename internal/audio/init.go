package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
)

// PortAudio is process-global. Every Capture and every device listing holds a
// reference; the library is initialized for the first holder and terminated
// when the last one lets go.
var (
	refMu    sync.Mutex
	refCount int

	paInitialize = portaudio.Initialize
	paTerminate  = portaudio.Terminate
)

func acquire() error {
	refMu.Lock()
	defer refMu.Unlock()
	if refCount == 0 {
		if err := paInitialize(); err != nil {
			return errors.Wrap(err, "initialize PortAudio")
		}
	}
	refCount++
	return nil
}

func release() error {
	refMu.Lock()
	defer refMu.Unlock()
	if refCount == 0 {
		return nil
	}
	refCount--
	if refCount > 0 {
		return nil
	}
	return errors.Wrap(paTerminate(), "terminate PortAudio")
}
