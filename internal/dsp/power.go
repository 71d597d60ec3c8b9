package dsp

import "math"

// RMSVoltage returns the root-mean-square of the centred voltages in w.
// Squares are accumulated in float64 over the whole window. A window held at
// Midscale yields exactly zero.
func RMSVoltage(w *SampleWindow) float64 {
	var sumSquares float64
	for _, code := range w {
		v := CodeToVoltage(code)
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / WindowSize)
}

// IntensityStep is the voltage span of one coarse intensity step.
const IntensityStep = (VRef / 5) / 20

// Intensity counts how many whole IntensityStep increments fit strictly
// inside v. Non-positive voltages and NaN map to 0; readings too large for an
// int saturate at math.MaxInt.
func Intensity(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	steps := math.Ceil(v/IntensityStep) - 1
	if steps >= math.MaxInt {
		return math.MaxInt
	}
	return int(steps)
}
