// Package dsp turns raw acquisition windows into centred voltages, RMS power
// and calibrated decibel estimates.
package dsp

const (
	// WindowSize is the number of ADC codes captured per acquisition burst.
	WindowSize = 300
	// ADCBits is the converter resolution.
	ADCBits = 12
	// CodeRange is the number of distinct codes the converter produces.
	CodeRange = 1 << ADCBits
	// MaxCode is the largest valid code.
	MaxCode = CodeRange - 1
	// Midscale is the code of a silent, perfectly centred input.
	Midscale = CodeRange / 2
	// VRef is the converter reference voltage.
	VRef = 3.3

	// ADCClockHz is the converter input clock.
	ADCClockHz = 48_000_000
	// ADCClockDiv is the converter clock divider; one conversion takes
	// 1+ADCClockDiv cycles.
	ADCClockDiv = 96
	// ADCSampleRate is the sample rate of a hardware acquisition burst.
	ADCSampleRate = ADCClockHz / (1 + ADCClockDiv)
)

// SampleWindow is one acquisition burst of raw converter codes.
type SampleWindow [WindowSize]uint16

// CodeToVoltage converts a raw code to a voltage centred on zero.
func CodeToVoltage(code uint16) float64 {
	return float64(code)*(VRef/CodeRange) - VRef/2
}

// VoltageToCode is the inverse of CodeToVoltage, rounded to the nearest code
// and clamped to the converter range.
func VoltageToCode(v float64) uint16 {
	code := (v + VRef/2) * (CodeRange / VRef)
	switch {
	case code <= 0:
		return 0
	case code >= MaxCode:
		return MaxCode
	}
	return uint16(code + 0.5)
}

// Fill sets every code in the window to the same value.
func (w *SampleWindow) Fill(code uint16) {
	for i := range w {
		w[i] = code
	}
}
