package acquire

import (
	"context"
	"math"
	"math/rand"

	"github.com/rotisserie/eris"

	"github.com/cybre/matrix-sound-meter/internal/dsp"
)

// ToneOptions configures a ToneSource.
type ToneOptions struct {
	// Frequency of the sine in Hz.
	Frequency float64
	// Amplitude is the peak voltage of the sine.
	Amplitude float64
	// Noise is the peak voltage of uniform noise added on top.
	Noise float64
	// SampleRate in Hz; defaults to dsp.ADCSampleRate.
	SampleRate float64
	// Seed for the noise generator.
	Seed int64
}

// ToneSource synthesises a sine wave, optionally with noise. The phase is
// continuous across windows.
type ToneSource struct {
	opts  ToneOptions
	phase float64
	rng   *rand.Rand
}

// NewToneSource builds a ToneSource.
func NewToneSource(opts ToneOptions) (*ToneSource, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = dsp.ADCSampleRate
	}
	if opts.Frequency <= 0 || opts.Frequency >= opts.SampleRate/2 {
		return nil, eris.Errorf("tone frequency %.1f Hz outside (0, %.1f)", opts.Frequency, opts.SampleRate/2)
	}
	if opts.Amplitude < 0 || opts.Noise < 0 {
		return nil, eris.New("tone amplitude and noise must be non-negative")
	}

	return &ToneSource{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}, nil
}

// SampleRate returns the synthetic sample rate in Hz.
func (s *ToneSource) SampleRate() float64 {
	return s.opts.SampleRate
}

// Acquire fills w with the next window of the tone.
func (s *ToneSource) Acquire(ctx context.Context, w *dsp.SampleWindow) error {
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "acquire tone window")
	default:
	}

	step := 2 * math.Pi * s.opts.Frequency / s.opts.SampleRate
	for i := range w {
		v := s.opts.Amplitude * math.Sin(s.phase)
		if s.opts.Noise > 0 {
			v += s.opts.Noise * (2*s.rng.Float64() - 1)
		}
		w[i] = dsp.VoltageToCode(v)
		s.phase = math.Mod(s.phase+step, 2*math.Pi)
	}

	return nil
}
