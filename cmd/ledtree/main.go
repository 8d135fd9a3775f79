package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/guidoenr/ledtree/internal/app"
	"github.com/guidoenr/ledtree/internal/audio"
	"github.com/guidoenr/ledtree/internal/config"
	"github.com/guidoenr/ledtree/internal/idle"
	"github.com/guidoenr/ledtree/internal/input"
	"github.com/guidoenr/ledtree/internal/render"
	"github.com/guidoenr/ledtree/internal/sampler"
	"github.com/guidoenr/ledtree/internal/telemetry"
	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
)

const (
	appName = "ledtree"
	appDesc = "audio-reactive LED strip and matrix driver"
)

var version = "dev"

type options struct {
	source    string
	device    string
	wavPath   string
	fps       float64
	switchArg string
	gpioChip  string
	gpioLine  int
	sink      string
	glyphs    string
	noColor   bool
	serial    string
	baud      int
	webPort   int
	stdout    bool
	reduced   bool
	zeroPoint int
	seed      int64
	profile   string
	debug     bool
}

func defaultOptions() options {
	return options{
		source:    "portaudio",
		fps:       100,
		switchArg: "keyboard",
		gpioChip:  "gpiochip0",
		gpioLine:  17,
		sink:      "terminal",
		glyphs:    "block",
		baud:      115200,
	}
}

func main() {
	opts := defaultOptions()

	parser := flaggy.NewParser(appName)
	parser.Description = appDesc
	parser.Version = version

	listDevicesCmd := flaggy.Subcommand{
		Name:        "list-devices",
		ShortName:   "ld",
		Description: "list audio input devices",
	}
	parser.AttachSubcommand(&listDevicesCmd, 1)

	monitorCmd := flaggy.Subcommand{
		Name:        "monitor",
		ShortName:   "m",
		Description: "follow telemetry printed by a strip on --serial",
	}
	parser.AttachSubcommand(&monitorCmd, 1)

	parser.String(&opts.source, "s", "source", "input source (portaudio|wav|synth)")
	parser.String(&opts.device, "d", "device", "PortAudio device name (substring match)")
	parser.String(&opts.wavPath, "w", "wav", "WAV file for the wav source")
	parser.Float64(&opts.fps, "f", "fps", "control loop rate in ticks per second")
	parser.String(&opts.switchArg, "sw", "switch", "music switch (keyboard|gpio|on|off)")
	parser.String(&opts.gpioChip, "gc", "gpio-chip", "GPIO chip for the switch")
	parser.Int(&opts.gpioLine, "gl", "gpio-line", "GPIO line offset for the switch")
	parser.String(&opts.sink, "o", "sink", "display sink (terminal|sdl|none)")
	parser.String(&opts.glyphs, "g", "glyphs", "terminal glyphs ("+strings.Join(render.GlyphSetNames(), "|")+")")
	parser.Bool(&opts.noColor, "nc", "no-color", "disable ANSI color output")
	parser.String(&opts.serial, "p", "serial", "serial device for telemetry")
	parser.Int(&opts.baud, "b", "baud", "serial baud rate")
	parser.Int(&opts.webPort, "web", "web-port", "serve live telemetry on this port (0 disables)")
	parser.Bool(&opts.stdout, "t", "stdout-telemetry", "write telemetry lines to stdout")
	parser.Bool(&opts.reduced, "r", "reduced-telemetry", "omit the switch flag from telemetry lines")
	parser.Int(&opts.zeroPoint, "z", "zero-point", "fixed zero point, skips calibration when > 0")
	parser.Int64(&opts.seed, "", "seed", "random seed for the idle patterns")
	parser.String(&opts.profile, "prof", "profile", "append per-section tick timings to this CSV file")
	parser.Bool(&opts.debug, "", "debug", "enable verbose logging")

	if err := parser.Parse(); err != nil {
		log.Fatalf("failed to parse arguments: %v", err)
	}

	logger := log.New(os.Stdout, "["+appName+"] ", log.LstdFlags)
	if !opts.debug {
		logger.SetOutput(os.Stderr)
		logger.SetFlags(0)
	}

	if listDevicesCmd.Used {
		if err := listDevices(config.Defaults().ADCMax); err != nil {
			logger.Fatalf("list devices: %v", err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := run
	if monitorCmd.Used {
		runner = monitor
	}
	err := runner(ctx, opts, logger)
	interrupted := ctx.Err() != nil
	cancel()
	if err != nil && !interrupted {
		logger.Fatalf("runtime error: %v", err)
	}
}

func run(ctx context.Context, opts options, logger *log.Logger) error {
	if opts.fps <= 0 {
		return errors.Errorf("fps must be positive (got %.2f)", opts.fps)
	}
	tunables := config.Defaults()
	tick := time.Duration(float64(time.Second) / opts.fps)

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Printf("cleanup error: %v", err)
			}
		}
	}()

	src, closeSrc, err := openSource(opts, tunables, tick, logger)
	if err != nil {
		return err
	}
	if closeSrc != nil {
		closers = append(closers, closeSrc)
	}

	sw, events, err := openSwitch(ctx, opts)
	if err != nil {
		return err
	}
	if c, ok := sw.(io.Closer); ok {
		closers = append(closers, c)
	}

	var writers []io.Writer
	var listeners []telemetry.Listener
	if opts.serial != "" {
		port, err := telemetry.OpenSerial(opts.serial, opts.baud)
		if err != nil {
			return err
		}
		closers = append(closers, port)
		writers = append(writers, port)
	}
	if opts.stdout {
		if opts.sink == "terminal" {
			return errors.New("stdout telemetry needs --sink sdl or none")
		}
		writers = append(writers, os.Stdout)
	}
	if opts.webPort > 0 {
		hub := telemetry.NewHub(telemetry.HubConfig{
			Log:      logger,
			Patterns: idle.PatternNames(),
			Every:    int(opts.fps / 20),
		})
		listeners = append(listeners, hub)
		go func() {
			if err := hub.Serve(ctx, opts.webPort); err != nil {
				logger.Printf("telemetry server: %v", err)
			}
		}()
	}
	emitter := telemetry.NewEmitter(telemetry.EmitterConfig{
		Writers:   writers,
		Listeners: listeners,
		Reduced:   opts.reduced,
		Log:       logger,
	})

	var a *app.App
	sinks, err := openSinks(opts, tunables, func() string { return a.Status() })
	if err != nil {
		return err
	}

	a, err = app.New(app.Config{
		Tunables:  tunables,
		Source:    src,
		Switch:    sw,
		Sinks:     sinks,
		Emitter:   emitter,
		Events:    events,
		ZeroPoint: opts.zeroPoint,
		TargetFPS: opts.fps,
		Seed:      opts.seed,
		Profile:   opts.profile,
		Log:       logger,
	})
	if err != nil {
		for _, s := range sinks {
			s.Close()
		}
		return errors.Wrap(err, "create app")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Printf("cleanup error: %v", err)
		}
	}()

	return a.Run(ctx)
}

func openSource(opts options, tunables config.Tunables, tick time.Duration, logger *log.Logger) (sampler.Source, io.Closer, error) {
	switch opts.source {
	case "portaudio":
		capture, err := audio.NewCapture(audio.Config{
			DeviceName: opts.device,
			ADCMax:     tunables.ADCMax,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "audio capture")
		}
		logger.Printf("audio capture started on %q @ %.0f Hz", capture.Device().Name, capture.SampleRate())
		return capture, capture, nil
	case "wav":
		if opts.wavPath == "" {
			return nil, nil, errors.New("--wav is required for the wav source")
		}
		src, err := sampler.OpenWav(opts.wavPath, tick, tunables.ADCMax)
		if err != nil {
			return nil, nil, err
		}
		logger.Printf("playing %s (%s, looped)", opts.wavPath, src.Duration().Round(time.Millisecond))
		return src, nil, nil
	case "synth":
		logger.Println("using synthetic input")
		return sampler.NewSynth(tick, tunables.ADCMax, opts.seed), nil, nil
	}
	return nil, nil, errors.Errorf("unknown source %q", opts.source)
}

func openSwitch(ctx context.Context, opts options) (input.Switch, <-chan input.Event, error) {
	switch opts.switchArg {
	case "on":
		return input.Fixed(true), nil, nil
	case "off":
		return input.Fixed(false), nil, nil
	case "keyboard":
		kb, err := input.OpenKeyboard(ctx, true)
		if err != nil {
			return nil, nil, err
		}
		return kb, kb.Events(), nil
	case "gpio":
		g, err := input.OpenGPIO(opts.gpioChip, opts.gpioLine)
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil
	}
	return nil, nil, errors.Errorf("unknown switch %q", opts.switchArg)
}

func openSinks(opts options, tunables config.Tunables, status func() string) ([]render.Sink, error) {
	switch opts.sink {
	case "none":
		return nil, nil
	case "terminal":
		t, err := render.NewTerminal(render.TerminalConfig{
			Out:        os.Stdout,
			Width:      80,
			Glyphs:     opts.glyphs,
			Brightness: tunables.Brightness,
			UseANSI:    !opts.noColor,
			Status:     status,
		})
		if err != nil {
			return nil, err
		}
		return []render.Sink{t}, nil
	case "sdl":
		if !render.SupportsSDL() {
			return nil, errors.New("built without SDL support (rebuild with -tags sdl)")
		}
		w, err := render.NewWindow(appName, tunables.StripLength, tunables.MatrixRows, tunables.MatrixCols, tunables.Brightness)
		if err != nil {
			return nil, err
		}
		return []render.Sink{w}, nil
	}
	return nil, errors.Errorf("unknown sink %q", opts.sink)
}

// monitor echoes the telemetry of a running strip and serves it on the web
// page, without driving any output itself.
func monitor(ctx context.Context, opts options, logger *log.Logger) error {
	if opts.serial == "" {
		return errors.New("monitor needs --serial")
	}
	port, err := telemetry.OpenSerial(opts.serial, opts.baud)
	if err != nil {
		return err
	}
	defer port.Close()

	listeners := []telemetry.Listener{telemetry.WriterListener{W: os.Stdout}}
	if opts.webPort > 0 {
		hub := telemetry.NewHub(telemetry.HubConfig{Log: logger, Patterns: idle.PatternNames()})
		listeners = append(listeners, hub)
		go func() {
			if err := hub.Serve(ctx, opts.webPort); err != nil {
				logger.Printf("telemetry server: %v", err)
			}
		}()
	}

	// A blocked serial read does not observe ctx, so follow in the background
	// and return on cancellation; exiting closes the port.
	done := make(chan error, 1)
	go func() {
		n, err := telemetry.Follow(port, logger, listeners...)
		logger.Printf("read %d telemetry records from %s", n, opts.serial)
		done <- err
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return err
	}
}

func listDevices(adcMax int) error {
	devices, err := audio.ListDevices(audio.Config{ADCMax: adcMax})
	if err != nil {
		return err
	}
	fmt.Printf("\n=== Audio Input Devices ===\n\n")
	for _, dev := range devices {
		markers := ""
		if dev.Default {
			markers += " (default)"
		}
		if dev.Selected {
			markers += " *"
		}
		fmt.Printf("- %s [%s]%s\n    inputs:%d sample:%.0f Hz mix:%d->mono zero:%d\n",
			dev.Name, dev.HostAPI, markers, dev.Inputs, dev.SampleRate, dev.Channels, dev.ZeroPoint)
	}
	fmt.Println("\n'*' marks the device used when --device is not given")
	return nil
}
