package audio

import (
	"errors"
	"testing"
)

func TestPortAudioReferenceCount(t *testing.T) {
	inits, terms := 0, 0
	oldInit, oldTerm := paInitialize, paTerminate
	paInitialize = func() error { inits++; return nil }
	paTerminate = func() error { terms++; return nil }
	defer func() { paInitialize, paTerminate = oldInit, oldTerm }()

	for i := 0; i < 2; i++ {
		if err := acquire(); err != nil {
			t.Fatalf("acquire: %v", err)
		}
	}
	release()
	if terms != 0 {
		t.Fatalf("terminated while still referenced")
	}
	release()
	release() // unbalanced release is ignored
	if inits != 1 || terms != 1 {
		t.Fatalf("inits=%d terms=%d want 1/1", inits, terms)
	}
}

func TestAcquireFailureTakesNoReference(t *testing.T) {
	oldInit, oldTerm := paInitialize, paTerminate
	paInitialize = func() error { return errors.New("no audio") }
	terms := 0
	paTerminate = func() error { terms++; return nil }
	defer func() { paInitialize, paTerminate = oldInit, oldTerm }()

	if err := acquire(); err == nil {
		t.Fatalf("init failure not reported")
	}
	release()
	if terms != 0 {
		t.Fatalf("terminate called without a successful init")
	}
}
