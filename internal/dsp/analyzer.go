package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Stats summarises one window for diagnostics and display.
type Stats struct {
	RMS           float64
	MinVoltage    float64
	MaxVoltage    float64
	PeakFrequency float64
	PeakMagnitude float64
}

// Analyzer computes window statistics. It reuses scratch buffers to keep
// allocations predictable across cycles; it keeps no state between windows.
type Analyzer struct {
	sampleRate float64
	window     []float64
	voltages   []float64
	windowed   []float64
	binWidth   float64
}

// NewAnalyzer constructs an Analyzer for windows captured at sampleRate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	if sampleRate <= 0 {
		panic("dsp: sampleRate must be > 0")
	}

	return &Analyzer{
		sampleRate: sampleRate,
		window:     HannWindow(WindowSize),
		voltages:   make([]float64, WindowSize),
		windowed:   make([]float64, WindowSize),
		binWidth:   sampleRate / WindowSize,
	}
}

// SampleRate returns the configured sample rate in Hz.
func (a *Analyzer) SampleRate() float64 {
	return a.sampleRate
}

// Analyze computes statistics for w.
func (a *Analyzer) Analyze(w *SampleWindow) Stats {
	minV := math.Inf(1)
	maxV := math.Inf(-1)
	for i, code := range w {
		v := CodeToVoltage(code)
		a.voltages[i] = v
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	stats := Stats{
		RMS:        RMSVoltage(w),
		MinVoltage: minV,
		MaxVoltage: maxV,
	}
	if stats.RMS <= NoiseFloor {
		return stats
	}

	copy(a.windowed, a.voltages)
	removeMean(a.windowed)
	ApplyWindowInPlace(a.windowed, a.window)

	spectrum := fft.FFTReal(a.windowed)
	half := len(spectrum)/2 + 1
	// skip the DC bin
	for i := 1; i < half; i++ {
		mag := cmplx.Abs(spectrum[i])
		if mag > stats.PeakMagnitude {
			stats.PeakMagnitude = mag
			stats.PeakFrequency = float64(i) * a.binWidth
		}
	}

	return stats
}

func removeMean(samples []float64) {
	if len(samples) == 0 {
		return
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))
	for i := range samples {
		samples[i] -= mean
	}
}

// HannWindow returns a precomputed Hann window for the requested size.
func HannWindow(n int) []float64 {
	if n <= 0 {
		return nil
	}
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := range n {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return window
}

// ApplyWindowInPlace multiplies samples by a window function in-place.
func ApplyWindowInPlace(samples []float64, window []float64) {
	switch {
	case len(samples) == 0:
		return
	case len(samples) != len(window):
		panic("dsp: window length mismatch")
	}
	for i := range samples {
		samples[i] *= window[i]
	}
}
