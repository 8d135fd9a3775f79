package audio

import (
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/guidoenr/ledtree/internal/sampler"
	"github.com/pkg/errors"
)

// Capture wraps a PortAudio input stream and presents it as an analog input:
// each Read returns the sample furthest from silence since the previous Read,
// scaled to ADC units.
type Capture struct {
	stream     *portaudio.Stream
	sampleRate float64
	channels   int
	adcMax     int
	device     *portaudio.DeviceInfo

	mu   sync.Mutex
	peak float32
}

// Config controls how a Capture instance is created.
type Config struct {
	// DeviceName selects by case-insensitive substring; empty picks the best
	// ranked input.
	DeviceName string
	BufferSize int
	// Channels are averaged to mono; capped at what the device offers.
	Channels int
	ADCMax   int
}

const (
	defaultBufferSize = 512
	defaultChannels   = 2
	defaultADCMax     = 1023
)

func (cfg Config) withDefaults() Config {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.Channels <= 0 {
		cfg.Channels = defaultChannels
	}
	if cfg.ADCMax <= 0 {
		cfg.ADCMax = defaultADCMax
	}
	return cfg
}

// NewCapture initializes PortAudio if needed and starts an input stream.
func NewCapture(cfg Config) (_ *Capture, err error) {
	cfg = cfg.withDefaults()
	if err := acquire(); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "list audio devices")
	}
	cands := candidates(infos)
	pos, err := pickDevice(cands, cfg.DeviceName)
	if err != nil {
		return nil, err
	}
	device := infos[cands[pos].index]
	channels := mixChannels(cfg.Channels, device.MaxInputChannels)

	capture := &Capture{
		sampleRate: device.DefaultSampleRate,
		channels:   channels,
		adcMax:     cfg.ADCMax,
		device:     device,
	}

	framesPerBuffer := cfg.BufferSize / channels
	if framesPerBuffer < 64 {
		framesPerBuffer = portaudio.FramesPerBufferUnspecified
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      capture.sampleRate,
		FramesPerBuffer: framesPerBuffer,
	}, capture.process)
	if err != nil {
		return nil, errors.Wrapf(err, "open stream on %q", device.Name)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, errors.Wrap(err, "start stream")
	}
	capture.stream = stream
	return capture, nil
}

// Close stops the stream and drops this capture's PortAudio reference.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	stream := c.stream
	c.stream = nil
	defer release()

	if err := stream.Stop(); err != nil && !stoppedAlready(err) {
		return errors.Wrap(err, "stop stream")
	}
	return errors.Wrap(stream.Close(), "close stream")
}

// SampleRate returns the stream sample rate.
func (c *Capture) SampleRate() float64 {
	return c.sampleRate
}

// Device returns the device being captured.
func (c *Capture) Device() *portaudio.DeviceInfo {
	return c.device
}

// Read returns the held peak in ADC units and starts a new hold window. With
// no audio since the last call it reads as mid-scale silence.
func (c *Capture) Read() int {
	c.mu.Lock()
	peak := c.peak
	c.peak = 0
	c.mu.Unlock()
	return sampler.ToADC(peak, c.adcMax)
}

func (c *Capture) process(in []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hold(in)
}

// hold mixes interleaved frames to mono and keeps the sample with the largest
// magnitude.
func (c *Capture) hold(in []float32) {
	channels := c.channels
	if channels < 1 {
		channels = 1
	}
	for base := 0; base+channels <= len(in); base += channels {
		sum := float32(0)
		for ch := 0; ch < channels; ch++ {
			sum += in[base+ch]
		}
		v := sum / float32(channels)
		if abs32(v) > abs32(c.peak) {
			c.peak = v
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// stoppedAlready reports PortAudio's "stream is stopped" error.
func stoppedAlready(err error) bool {
	return err != nil && strings.Contains(err.Error(), "PaErrorCode -9986")
}
