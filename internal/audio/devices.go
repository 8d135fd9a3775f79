package audio

import (
	"sort"
	"strings"

	"github.com/gordonklaus/portaudio"
	"github.com/guidoenr/ledtree/internal/sampler"
	"github.com/pkg/errors"
)

// Device is an input device as the capture would use it.
type Device struct {
	Name       string
	HostAPI    string
	Inputs     int
	SampleRate float64
	Default    bool
	// Selected marks the device NewCapture picks when no name is given.
	Selected bool
	// Channels is how many inputs the capture opens and averages to mono.
	Channels int
	// ZeroPoint is the ADC reading silence maps to.
	ZeroPoint int
}

// ListDevices reports every input-capable device, sorted by host and name,
// with the channel mix and bias a capture configured by cfg would apply.
func ListDevices(cfg Config) ([]Device, error) {
	cfg = cfg.withDefaults()
	if err := acquire(); err != nil {
		return nil, err
	}
	defer release()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "list audio devices")
	}
	cands := candidates(infos)
	best := -1
	if len(cands) > 0 {
		best = cands[rankDevices(cands)[0]].index
	}

	zero := sampler.ToADC(0, cfg.ADCMax)
	devices := make([]Device, 0, len(cands))
	for _, c := range cands {
		d := infos[c.index]
		devices = append(devices, Device{
			Name:       d.Name,
			HostAPI:    d.HostApi.Name,
			Inputs:     d.MaxInputChannels,
			SampleRate: d.DefaultSampleRate,
			Default:    c.isDefault,
			Selected:   c.index == best,
			Channels:   mixChannels(cfg.Channels, d.MaxInputChannels),
			ZeroPoint:  zero,
		})
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].HostAPI == devices[j].HostAPI {
			return devices[i].Name < devices[j].Name
		}
		return devices[i].HostAPI < devices[j].HostAPI
	})
	return devices, nil
}

// candidate is the part of a device that selection looks at.
type candidate struct {
	index     int
	name      string
	inputs    int
	isDefault bool
}

func candidates(infos []*portaudio.DeviceInfo) []candidate {
	defaultIndex := -1
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultIndex = def.Index
	}
	var out []candidate
	for i, d := range infos {
		if d == nil || d.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, candidate{
			index:     i,
			name:      d.Name,
			inputs:    d.MaxInputChannels,
			isDefault: d.Index == defaultIndex,
		})
	}
	return out
}

// lineKeywords hint at a source carrying music rather than a voice mic.
var lineKeywords = []string{"line", "monitor", "loopback", "stereo mix", "what u hear"}

// rankDevices orders candidate positions best first: the system default
// input, then line-level or loopback sources, then by name.
func rankDevices(cands []candidate) []int {
	score := func(c candidate) int {
		s := 0
		if c.isDefault {
			s += 50
		}
		lower := strings.ToLower(c.name)
		for _, kw := range lineKeywords {
			if strings.Contains(lower, kw) {
				s += 20
				break
			}
		}
		return s
	}
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := cands[order[i]], cands[order[j]]
		if sa, sb := score(a), score(b); sa != sb {
			return sa > sb
		}
		return strings.ToLower(a.name) < strings.ToLower(b.name)
	})
	return order
}

// pickDevice returns the position in cands of the device named like want
// (case-insensitive substring), or the best ranked one when want is empty.
func pickDevice(cands []candidate, want string) (int, error) {
	if len(cands) == 0 {
		return -1, errors.New("no audio input device found")
	}
	if want == "" {
		return rankDevices(cands)[0], nil
	}
	want = strings.ToLower(want)
	for i, c := range cands {
		if strings.Contains(strings.ToLower(c.name), want) {
			return i, nil
		}
	}
	return -1, errors.Errorf("audio device %q not found", want)
}

// mixChannels is how many channels the capture opens on a device.
func mixChannels(requested, available int) int {
	if requested > available {
		return available
	}
	return requested
}
