package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/cybre/matrix-sound-meter/internal/acquire"
	"github.com/cybre/matrix-sound-meter/internal/config"
	"github.com/cybre/matrix-sound-meter/internal/display"
	"github.com/cybre/matrix-sound-meter/internal/ledstrip"
	"github.com/cybre/matrix-sound-meter/internal/meter"
	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
	"github.com/cybre/matrix-sound-meter/internal/ui"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debug, visualize bool) *slog.Logger {
	logOutput := os.Stdout
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	if visualize && !debug {
		logLevel = slog.LevelWarn
	}
	if visualize {
		logOutput = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	return logger
}

func runMeter(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	mode, err := meter.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	if cfg.Audio.Source == config.SourcePortAudio {
		if err := portaudio.Initialize(); err != nil {
			return eris.Wrap(err, "initialize PortAudio")
		}
		defer portaudio.Terminate()
	}

	source, sampleRate, closeSource, err := openSource(logger, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	buttons := sensitivity.NewDebouncer(cfg.Buttons.Debounce, 0)

	var sinks meter.Sinks
	if cfg.LED.Port != "" {
		strip, err := ledstrip.OpenSerial(cfg.LED.Port, cfg.LED.BaudRate, cfg.LED.Latch)
		if err != nil {
			return err
		}
		defer func() {
			if err := strip.Close(); err != nil {
				logger.Warn("failed to close led strip", slog.Any("error", err))
			}
		}()
		logger.Info("using led strip",
			slog.String("port", cfg.LED.Port),
			slog.Int("baud_rate", cfg.LED.BaudRate),
			slog.Duration("latch", strip.Latch()))
		sinks.Frames = append(sinks.Frames, strip)
	}

	if cfg.Visualize {
		viz := ui.NewVisualizer(buttons, cancel)
		defer viz.Close()
		sinks.Frames = append(sinks.Frames, viz)
		sinks.Displays = append(sinks.Displays, viz)
	} else {
		sinks.Displays = append(sinks.Displays, display.NewConsole(os.Stdout))
	}

	m := meter.New(logger, source, sinks, sensitivity.NewController(), buttons, meter.Options{
		Mode:         mode,
		PollInterval: cfg.PollInterval,
		SampleRate:   sampleRate,
		SelfTest:     cfg.SelfTest,
	})

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return m.Run(gctx)
	})
	g.Go(func() error {
		return watchButtonSignals(gctx, logger, buttons)
	})

	err = g.Wait()
	switch {
	case err == nil:
		return nil
	case eris.Is(err, meter.ErrMaintenanceRequested):
		logger.Warn("stopping for maintenance")
		return nil
	case eris.Is(err, context.Canceled):
		return nil
	default:
		logger.Error("meter failed", slog.Any("error", err))
		return err
	}
}

func openSource(logger *slog.Logger, cfg *config.Config) (acquire.Source, float64, func(), error) {
	if cfg.Audio.Source == config.SourceTone {
		tone, err := acquire.NewToneSource(acquire.ToneOptions{
			Frequency:  cfg.Tone.Frequency,
			Amplitude:  cfg.Tone.Amplitude,
			Noise:      cfg.Tone.Noise,
			SampleRate: cfg.Audio.SampleRate,
			Seed:       1,
		})
		if err != nil {
			return nil, 0, nil, err
		}
		logger.Info("using synthetic tone",
			slog.Float64("frequency", cfg.Tone.Frequency),
			slog.Float64("amplitude", cfg.Tone.Amplitude),
			slog.Float64("sample_rate", tone.SampleRate()))
		return tone, tone.SampleRate(), func() {}, nil
	}

	devices, err := acquire.InputDevices()
	if err != nil {
		return nil, 0, nil, err
	}

	device, err := selectDevice(devices, cfg.Audio.Device)
	if err != nil {
		return nil, 0, nil, eris.Wrap(err, "select input device")
	}

	src, err := acquire.OpenPortAudio(logger, device, acquire.PortAudioOptions{
		SampleRate: cfg.Audio.SampleRate,
		Latency:    cfg.Audio.Latency,
		Gain:       cfg.Audio.Gain,
	})
	if err != nil {
		return nil, 0, nil, err
	}

	closeFn := func() {
		if err := src.Close(); err != nil {
			logger.Warn("failed to close audio stream", slog.Any("error", err))
		}
	}
	return src, src.SampleRate(), closeFn, nil
}
