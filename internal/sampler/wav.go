package sampler

import (
	"io"
	"os"
	"time"

	"github.com/mjibson/go-dsp/wav"
	"github.com/pkg/errors"
)

// WavSource replays a WAV file as the analog input. Each Read consumes the
// audio that elapsed since the previous tick and returns the sample furthest
// from silence, looping at the end of the file.
type WavSource struct {
	samples []float32
	rate    float64
	pos     int
	perTick int
	adcMax  int
}

// OpenWav decodes path into memory and mixes it down to mono.
func OpenWav(path string, tick time.Duration, adcMax int) (*WavSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open wav")
	}
	defer f.Close()
	return NewWavSource(f, tick, adcMax)
}

// NewWavSource decodes a WAV stream.
func NewWavSource(r io.Reader, tick time.Duration, adcMax int) (*WavSource, error) {
	w, err := wav.New(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode wav header")
	}
	channels := int(w.NumChannels)
	if channels <= 0 {
		return nil, errors.Errorf("wav has %d channels", channels)
	}
	raw, err := readSigned(w)
	if err != nil {
		return nil, err
	}
	if len(raw) < channels {
		return nil, errors.New("wav contains no samples")
	}

	mono := make([]float32, len(raw)/channels)
	for i := range mono {
		sum := float32(0)
		for ch := 0; ch < channels; ch++ {
			sum += raw[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}

	rate := float64(w.SampleRate)
	perTick := int(rate * tick.Seconds())
	if perTick < 1 {
		perTick = 1
	}
	return &WavSource{
		samples: mono,
		rate:    rate,
		perTick: perTick,
		adcMax:  adcMax,
	}, nil
}

// readSigned decodes every sample to [-1, 1] around silence. go-dsp's
// ReadFloats maps PCM onto [0, 1], so PCM is converted here from the raw
// integers instead.
func readSigned(w *wav.Wav) ([]float32, error) {
	data, err := w.ReadSamples(w.Samples)
	if err != nil {
		return nil, errors.Wrapf(err, "read wav samples (format %d, %d bits)", w.AudioFormat, w.BitsPerSample)
	}
	switch d := data.(type) {
	case []uint8:
		out := make([]float32, len(d))
		for i, v := range d {
			out[i] = (float32(v) - 128) / 128
		}
		return out, nil
	case []int16:
		out := make([]float32, len(d))
		for i, v := range d {
			out[i] = float32(v) / 32768
		}
		return out, nil
	case []float32:
		return d, nil
	}
	return nil, errors.Errorf("unsupported wav format %d", w.AudioFormat)
}

// Duration is the length of the decoded audio.
func (s *WavSource) Duration() time.Duration {
	return time.Duration(float64(len(s.samples)) / s.rate * float64(time.Second))
}

// Read returns the loudest sample of the next tick-sized window.
func (s *WavSource) Read() int {
	var peak float32
	for i := 0; i < s.perTick; i++ {
		v := s.samples[s.pos]
		s.pos = (s.pos + 1) % len(s.samples)
		if abs32(v) > abs32(peak) {
			peak = v
		}
	}
	return ToADC(peak, s.adcMax)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
