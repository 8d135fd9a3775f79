package audio

import (
	"errors"
	"testing"
)

func TestHoldKeepsLargestMagnitude(t *testing.T) {
	c := &Capture{channels: 2, adcMax: 1023}
	c.hold([]float32{0.1, 0.1, -0.6, -0.4, 0.3, 0.3})
	if got := c.Read(); got != 256 {
		t.Fatalf("read=%d want=256", got)
	}
	if got := c.Read(); got != 512 {
		t.Fatalf("read after drain=%d want=512", got)
	}
}

func TestHoldIgnoresPartialFrame(t *testing.T) {
	c := &Capture{channels: 2, adcMax: 1023}
	c.hold([]float32{0.5})
	if got := c.Read(); got != 512 {
		t.Fatalf("read=%d want=512", got)
	}
}

func TestStoppedAlready(t *testing.T) {
	if stoppedAlready(nil) {
		t.Fatalf("nil error flagged")
	}
	if !stoppedAlready(errors.New("PaErrorCode -9986: stream is stopped")) {
		t.Fatalf("stopped stream error not recognized")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.Channels != 2 || cfg.ADCMax != 1023 || cfg.BufferSize != 512 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if got := mixChannels(cfg.Channels, 1); got != 1 {
		t.Fatalf("mono device opened with %d channels", got)
	}
	if got := mixChannels(cfg.Channels, 8); got != 2 {
		t.Fatalf("channels=%d want=2", got)
	}
}
