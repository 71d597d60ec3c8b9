package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cybre/matrix-sound-meter/internal/acquire"
	"github.com/cybre/matrix-sound-meter/internal/config"
	"github.com/cybre/matrix-sound-meter/internal/ledstrip"
	"github.com/cybre/matrix-sound-meter/internal/meter"
	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"debug":          "debug",
	"visualize":      "visualize",
	"mode":           "mode",
	"poll-interval":  "poll_interval",
	"self-test":      "self_test",
	"source":         "audio.source",
	"device":         "audio.device",
	"sample-rate":    "audio.sample_rate",
	"gain":           "audio.gain",
	"latency":        "audio.latency",
	"tone-frequency": "tone.frequency",
	"tone-amplitude": "tone.amplitude",
	"tone-noise":     "tone.noise",
	"led-port":       "led.port",
	"baud-rate":      "led.baud_rate",
	"latch":          "led.latch",
	"debounce":       "buttons.debounce",
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		v          = viper.New()
	)

	root := &cobra.Command{
		Use:   "sound-meter",
		Short: "Sound level meter on a 5x5 LED matrix",
		Long: `Captures audio windows, estimates the sound pressure level in dB and
renders it on a 5x5 serpentine LED matrix together with the current
sensitivity level.

Send SIGUSR1 to cycle the sensitivity level and SIGUSR2 to stop for
maintenance. With --visualize the a/space and b keys do the same.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config.Setup(v, configFile)
			if err := bindFlags(cmd, v); err != nil {
				return err
			}
			return config.ReadFile(v)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			logger := setupLogger(cfg.Debug, cfg.Visualize)
			if used := v.ConfigFileUsed(); used != "" {
				logger.Debug("using config file", slog.String("path", used))
			}

			return runMeter(cmd.Context(), logger, cfg)
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/sound-meter/sound-meter.yaml)")

	flags := root.PersistentFlags()
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("visualize", false, "render the matrix in the terminal (logs go to stderr)")
	flags.String("mode", "meter", "matrix content: meter or digits")
	flags.Duration("poll-interval", meter.DefaultPollInterval, "pause between two measurement cycles")
	flags.Bool("self-test", true, "sweep rows and columns before metering")
	flags.String("source", config.SourcePortAudio, "audio source: portaudio or tone")
	flags.Int("device", -1, "audio input device index (leave blank to choose interactively)")
	flags.Float64("sample-rate", 0, "capture sample rate (0 = device default)")
	flags.Float64("gain", 1, "input gain applied before quantisation")
	flags.Duration("latency", 0, "override input latency (0 = device default)")
	flags.Float64("tone-frequency", 1000, "synthetic tone frequency in Hz")
	flags.Float64("tone-amplitude", 0.5, "synthetic tone peak voltage")
	flags.Float64("tone-noise", 0.02, "synthetic noise peak voltage")
	flags.String("led-port", "", "serial port of the LED strip bridge (empty disables it)")
	flags.Int("baud-rate", ledstrip.DefaultBaudRate, "LED bridge baud rate")
	flags.Duration("latch", ledstrip.DefaultLatch, "LED latch delay after each frame")
	flags.Duration("debounce", sensitivity.DefaultDebounce, "minimum spacing between button presses")

	root.AddCommand(newConfigCmd(v), newDevicesCmd())

	return root
}

// bindFlags binds each known flag to its configuration key.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = eris.Wrapf(err, "bind flag %s", f.Name)
		}
	})

	return lastErr
}

func newConfigCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			out, err := cfg.Dump()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if used := v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(w, "# %s\n", used)
			}
			_, err = w.Write(out)
			return err
		},
	}
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices and serial ports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := portaudio.Initialize(); err != nil {
				return eris.Wrap(err, "initialize PortAudio")
			}
			defer portaudio.Terminate()

			devices, err := acquire.InputDevices()
			if err != nil {
				return err
			}
			ports, err := ledstrip.SerialPorts()
			if err != nil {
				return err
			}

			printDevices(cmd.OutOrStdout(), devices, ports)
			return nil
		},
	}
}

func printDevices(w io.Writer, devices []*portaudio.DeviceInfo, ports []string) {
	fmt.Fprintln(w, "Audio inputs:")
	if len(devices) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, dev := range devices {
		fmt.Fprintf(w, "  %s\n", describeDevice(i, dev))
	}

	fmt.Fprintln(w, "Serial ports:")
	if len(ports) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range ports {
		fmt.Fprintf(w, "  %s\n", p)
	}
}
