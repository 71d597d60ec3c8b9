package acquire

import (
	"context"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"

	"github.com/cybre/matrix-sound-meter/internal/dsp"
)

// PortAudioOptions configures a PortAudioSource.
type PortAudioOptions struct {
	SampleRate float64
	Latency    time.Duration
	Gain       float64
}

// PortAudioSource reads mono windows from a PortAudio input device using the
// blocking stream API. PortAudio must be initialised by the caller.
type PortAudioSource struct {
	logger *slog.Logger
	device *portaudio.DeviceInfo
	stream *portaudio.Stream
	buf    []float32
	gain   float64
	rate   float64
}

// OpenPortAudio opens and starts a blocking input stream on device.
func OpenPortAudio(logger *slog.Logger, device *portaudio.DeviceInfo, opts PortAudioOptions) (*PortAudioSource, error) {
	if device == nil {
		return nil, eris.New("audio device is not specified")
	}
	if device.MaxInputChannels < 1 {
		return nil, eris.Errorf("device %s has no input channels", device.Name)
	}

	rate := EffectiveSampleRate(opts.SampleRate, device.DefaultSampleRate)
	gain := opts.Gain
	if gain <= 0 {
		gain = 1
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      rate,
		FramesPerBuffer: dsp.WindowSize,
	}
	if opts.Latency > 0 {
		params.Input.Latency = opts.Latency
	}

	buf := make([]float32, dsp.WindowSize)
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, eris.Wrap(err, "open audio stream")
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, eris.Wrap(err, "start audio stream")
	}

	logger.Info("using audio input device",
		slog.String("name", device.Name),
		slog.Float64("sample_rate", rate),
		slog.Int("window", dsp.WindowSize),
		slog.Float64("gain", gain))

	return &PortAudioSource{
		logger: logger,
		device: device,
		stream: stream,
		buf:    buf,
		gain:   gain,
		rate:   rate,
	}, nil
}

// SampleRate returns the negotiated stream sample rate in Hz.
func (s *PortAudioSource) SampleRate() float64 {
	return s.rate
}

// Acquire blocks until a full window has been read from the device.
func (s *PortAudioSource) Acquire(ctx context.Context, w *dsp.SampleWindow) error {
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "acquire audio window")
	default:
	}

	if err := s.stream.Read(); err != nil {
		// An overflow still leaves a full buffer; the window is usable.
		if !eris.Is(err, portaudio.InputOverflowed) {
			return eris.Wrap(err, "read audio stream")
		}
		s.logger.Debug("audio input overflowed", slog.String("device", s.device.Name))
	}

	Quantize(s.buf, s.gain, w)
	return nil
}

// Close stops and closes the stream.
func (s *PortAudioSource) Close() error {
	stopErr := s.stream.Stop()
	if err := s.stream.Close(); err != nil {
		return eris.Wrap(err, "close audio stream")
	}
	if stopErr != nil {
		return eris.Wrap(stopErr, "stop audio stream")
	}
	return nil
}

// InputDevices returns the devices that can capture audio.
func InputDevices() ([]*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, eris.Wrap(err, "enumerate audio devices")
	}

	inputs := make([]*portaudio.DeviceInfo, 0, len(devices))
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			inputs = append(inputs, dev)
		}
	}
	return inputs, nil
}

// EffectiveSampleRate picks the requested rate, then the device default, then
// 44.1 kHz.
func EffectiveSampleRate(requested, deviceDefault float64) float64 {
	if requested > 0 {
		return requested
	}

	if deviceDefault > 0 {
		return deviceDefault
	}

	return 44100
}
