// Package config loads meter settings from flags, environment and an optional
// YAML file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// Name is the config file base name and environment prefix source.
	Name = "sound-meter"
	// EnvPrefix prefixes environment overrides, e.g. SOUND_METER_LED_PORT.
	EnvPrefix = "SOUND_METER"
)

// Audio source kinds.
const (
	SourcePortAudio = "portaudio"
	SourceTone      = "tone"
)

// Config is the full application configuration.
type Config struct {
	Debug        bool          `mapstructure:"debug"`
	Visualize    bool          `mapstructure:"visualize"`
	Mode         string        `mapstructure:"mode"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	SelfTest     bool          `mapstructure:"self_test"`

	Audio   AudioConfig   `mapstructure:"audio"`
	Tone    ToneConfig    `mapstructure:"tone"`
	LED     LEDConfig     `mapstructure:"led"`
	Buttons ButtonsConfig `mapstructure:"buttons"`
}

// AudioConfig selects and tunes the acquisition source.
type AudioConfig struct {
	Source     string        `mapstructure:"source"`
	Device     int           `mapstructure:"device"`
	SampleRate float64       `mapstructure:"sample_rate"`
	Gain       float64       `mapstructure:"gain"`
	Latency    time.Duration `mapstructure:"latency"`
}

// ToneConfig drives the synthetic source.
type ToneConfig struct {
	Frequency float64 `mapstructure:"frequency"`
	Amplitude float64 `mapstructure:"amplitude"`
	Noise     float64 `mapstructure:"noise"`
}

// LEDConfig addresses the serial strip bridge. An empty port disables it.
type LEDConfig struct {
	Port     string        `mapstructure:"port"`
	BaudRate int           `mapstructure:"baud_rate"`
	Latch    time.Duration `mapstructure:"latch"`
}

// ButtonsConfig tunes button handling.
type ButtonsConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("visualize", false)
	v.SetDefault("mode", "meter")
	v.SetDefault("poll_interval", "200ms")
	v.SetDefault("self_test", true)

	v.SetDefault("audio.source", SourcePortAudio)
	v.SetDefault("audio.device", -1)
	v.SetDefault("audio.sample_rate", 0)
	v.SetDefault("audio.gain", 1.0)
	v.SetDefault("audio.latency", "0s")

	v.SetDefault("tone.frequency", 1000.0)
	v.SetDefault("tone.amplitude", 0.5)
	v.SetDefault("tone.noise", 0.02)

	v.SetDefault("led.port", "")
	v.SetDefault("led.baud_rate", 115200)
	v.SetDefault("led.latch", "100us")

	v.SetDefault("buttons.debounce", "200ms")
}

// Setup prepares v: defaults, environment overrides and the config file
// search path. file, when set, is the only file considered.
func Setup(v *viper.Viper, file string) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", Name))
	}
	v.AddConfigPath("/etc/" + Name)
	v.AddConfigPath(".")
	v.SetConfigName(Name)
	v.SetConfigType("yaml")
}

// ReadFile reads the config file if one exists. A missing file is not an
// error unless it was named explicitly.
func ReadFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if eris.As(err, &notFound) {
		return nil
	}
	return eris.Wrap(err, "read config file")
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, eris.Wrap(err, "decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "meter", "digits":
	default:
		return eris.Errorf("mode must be meter or digits, got %q", c.Mode)
	}
	if c.PollInterval <= 0 {
		return eris.New("poll interval must be positive")
	}

	switch c.Audio.Source {
	case SourcePortAudio, SourceTone:
	default:
		return eris.Errorf("audio source must be %s or %s, got %q", SourcePortAudio, SourceTone, c.Audio.Source)
	}
	if c.Audio.SampleRate < 0 {
		return eris.New("audio sample rate cannot be negative")
	}
	if c.Audio.Gain <= 0 {
		return eris.New("audio gain must be positive")
	}
	if c.Audio.Latency < 0 {
		return eris.New("audio latency cannot be negative")
	}

	if c.Tone.Frequency <= 0 {
		return eris.New("tone frequency must be positive")
	}
	if c.Tone.Amplitude < 0 || c.Tone.Noise < 0 {
		return eris.New("tone amplitude and noise cannot be negative")
	}

	if c.LED.Port != "" && c.LED.BaudRate <= 0 {
		return eris.New("led baud rate must be positive")
	}
	if c.LED.Latch < 0 {
		return eris.New("led latch cannot be negative")
	}
	if c.Buttons.Debounce < 0 {
		return eris.New("button debounce cannot be negative")
	}

	return nil
}

// Dump renders c as YAML with durations in their string form.
func (c *Config) Dump() ([]byte, error) {
	doc := map[string]any{
		"debug":         c.Debug,
		"visualize":     c.Visualize,
		"mode":          c.Mode,
		"poll_interval": c.PollInterval.String(),
		"self_test":     c.SelfTest,
		"audio": map[string]any{
			"source":      c.Audio.Source,
			"device":      c.Audio.Device,
			"sample_rate": c.Audio.SampleRate,
			"gain":        c.Audio.Gain,
			"latency":     c.Audio.Latency.String(),
		},
		"tone": map[string]any{
			"frequency": c.Tone.Frequency,
			"amplitude": c.Tone.Amplitude,
			"noise":     c.Tone.Noise,
		},
		"led": map[string]any{
			"port":      c.LED.Port,
			"baud_rate": c.LED.BaudRate,
			"latch":     c.LED.Latch.String(),
		},
		"buttons": map[string]any{
			"debounce": c.Buttons.Debounce.String(),
		},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "marshal configuration")
	}
	return out, nil
}
