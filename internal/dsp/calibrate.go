package dsp

import (
	"math"

	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

const (
	// NoiseFloor is the RMS voltage at or below which the input is treated
	// as silence.
	NoiseFloor = 1e-4
	// MicSensitivity is the microphone output in volts per pascal.
	MicSensitivity = 0.02
	// RefSoundPressure is the 0 dB SPL reference pressure in pascals.
	RefSoundPressure = 20e-6
)

// ToDecibels converts an RMS voltage into a calibrated dB SPL estimate for the
// given sensitivity level. The result is never negative.
func ToDecibels(rms float64, level sensitivity.Level) float64 {
	if rms <= NoiseFloor || math.IsNaN(rms) {
		return 0
	}

	pressure := rms / MicSensitivity
	db := 20 * math.Log10(pressure/RefSoundPressure)

	return math.Max(0, db*level.CalibrationFactor)
}
