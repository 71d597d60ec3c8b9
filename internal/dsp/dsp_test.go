package dsp

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

func sineWindow(freq, amplitude, sampleRate float64) *SampleWindow {
	var w SampleWindow
	for i := range w {
		v := amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		w[i] = VoltageToCode(v)
	}
	return &w
}

func TestRMSVoltageConstantWindows(t *testing.T) {
	for _, code := range []uint16{0, 1, 1000, Midscale - 1, Midscale, Midscale + 1, 3000, MaxCode} {
		var w SampleWindow
		w.Fill(code)
		want := math.Abs(CodeToVoltage(code))
		assert.InDelta(t, want, RMSVoltage(&w), 1e-12, "code %d", code)
	}
}

func TestRMSVoltageMidscaleIsZero(t *testing.T) {
	var w SampleWindow
	w.Fill(Midscale)
	assert.InDelta(t, 0, RMSVoltage(&w), 1e-12)
	assert.InDelta(t, 0, CodeToVoltage(Midscale), 1e-12)
}

func TestRMSVoltageNeverNegative(t *testing.T) {
	var w SampleWindow
	for i := range w {
		w[i] = uint16((i * 97) % CodeRange)
	}
	assert.GreaterOrEqual(t, RMSVoltage(&w), 0.0)
}

func TestVoltageToCode(t *testing.T) {
	assert.Equal(t, uint16(0), VoltageToCode(-5))
	assert.Equal(t, uint16(MaxCode), VoltageToCode(5))
	assert.Equal(t, uint16(Midscale), VoltageToCode(0))

	for _, code := range []uint16{1, 100, 2047, 2049, 4094} {
		assert.Equal(t, code, VoltageToCode(CodeToVoltage(code)))
	}
}

func TestToDecibelsNoiseFloor(t *testing.T) {
	l := sensitivity.Lookup(1)
	assert.Equal(t, 0.0, ToDecibels(0, l))
	assert.Equal(t, 0.0, ToDecibels(NoiseFloor, l))
	assert.Equal(t, 0.0, ToDecibels(-1, l))
	assert.Equal(t, 0.0, ToDecibels(math.NaN(), l))
}

func TestToDecibelsReference(t *testing.T) {
	// 0.02 V is 1 Pa, i.e. 93.98 dB SPL before calibration.
	raw := 20 * math.Log10(1/RefSoundPressure)
	for _, l := range sensitivity.Levels() {
		assert.InDelta(t, raw*l.CalibrationFactor, ToDecibels(0.02, l), 1e-9, "level %d", l.Number)
	}
}

func TestToDecibelsNonNegative(t *testing.T) {
	for _, l := range sensitivity.Levels() {
		for v := 0.0; v <= 2.0; v += 0.00037 {
			assert.GreaterOrEqual(t, ToDecibels(v, l), 0.0)
		}
		// just above the noise floor the raw value is positive but small
		assert.GreaterOrEqual(t, ToDecibels(NoiseFloor*1.01, l), 0.0)
	}
}

func TestToDecibelsHigherLevelReadsLouder(t *testing.T) {
	prev := 0.0
	for _, l := range sensitivity.Levels() {
		db := ToDecibels(0.05, l)
		assert.Greater(t, db, prev)
		prev = db
	}
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, 0, Intensity(-1))
	assert.Equal(t, 0, Intensity(0))
	assert.Equal(t, 0, Intensity(IntensityStep/2))
	assert.Equal(t, 3, Intensity(0.1))
	assert.Equal(t, 48, Intensity(1.6))
	assert.Equal(t, 0, Intensity(math.NaN()))
}

func TestIntensityExtremeReadings(t *testing.T) {
	done := make(chan [3]int, 1)
	go func() {
		done <- [3]int{Intensity(math.Inf(1)), Intensity(1e17), Intensity(math.Inf(-1))}
	}()

	select {
	case got := <-done:
		assert.Equal(t, math.MaxInt, got[0])
		assert.Greater(t, got[1], 1<<50)
		assert.Equal(t, 0, got[2])
	case <-time.After(time.Second):
		t.Fatal("Intensity did not return for extreme readings")
	}
}

func TestAnalyzerSilence(t *testing.T) {
	a := NewAnalyzer(ADCSampleRate)
	var w SampleWindow
	w.Fill(Midscale)

	stats := a.Analyze(&w)
	assert.InDelta(t, 0, stats.RMS, 1e-12)
	assert.InDelta(t, 0, stats.MinVoltage, 1e-12)
	assert.InDelta(t, 0, stats.MaxVoltage, 1e-12)
	assert.Zero(t, stats.PeakFrequency)
}

func TestAnalyzerSine(t *testing.T) {
	const sampleRate = 30000.0 // 100 Hz per bin over a 300 sample window
	a := NewAnalyzer(sampleRate)
	require.Equal(t, sampleRate, a.SampleRate())

	w := sineWindow(1000, 0.5, sampleRate)
	stats := a.Analyze(w)

	assert.InDelta(t, 0.5/math.Sqrt2, stats.RMS, 0.01)
	assert.InDelta(t, 0.5, stats.MaxVoltage, 0.01)
	assert.InDelta(t, -0.5, stats.MinVoltage, 0.01)
	assert.Equal(t, 1000.0, stats.PeakFrequency)
	assert.Greater(t, stats.PeakMagnitude, 0.0)
}

func TestNewAnalyzerRejectsBadRate(t *testing.T) {
	assert.Panics(t, func() { NewAnalyzer(0) })
}

func TestHannWindow(t *testing.T) {
	assert.Nil(t, HannWindow(0))
	assert.Equal(t, []float64{1}, HannWindow(1))

	w := HannWindow(5)
	assert.InDelta(t, 0, w[0], 1e-12)
	assert.InDelta(t, 1, w[2], 1e-12)
	assert.InDelta(t, 0, w[4], 1e-12)

	assert.Panics(t, func() { ApplyWindowInPlace([]float64{1, 2}, w) })
}
