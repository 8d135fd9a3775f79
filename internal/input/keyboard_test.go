package input

import (
	"io"
	"testing"
)

func TestKeyboardCloseReleasesOnce(t *testing.T) {
	calls := 0
	k := newKeyboard(true, func() error {
		calls++
		return nil
	})
	var closer io.Closer = k
	for i := 0; i < 3; i++ {
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("terminal released %d times want=1", calls)
	}
	if !k.MusicMode() {
		t.Fatalf("initial switch position lost")
	}
}
