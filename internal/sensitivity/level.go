// Package sensitivity holds the five discrete sensitivity levels of the meter
// and the controller that cycles through them on button presses.
package sensitivity

import (
	"fmt"

	"github.com/cybre/matrix-sound-meter/internal/led"
)

const (
	// MinLevel is the least sensitive level and the power-on default.
	MinLevel = 1
	// MaxLevel is the most sensitive level.
	MaxLevel = 5
)

// Level binds a level number to its display range, indicator colour and
// calibration factor.
type Level struct {
	Number            int
	MinDB             float64
	MaxDB             float64
	Indicator         led.Color
	CalibrationFactor float64
}

// Span is the width of the displayed dB range.
func (l Level) Span() float64 {
	return l.MaxDB - l.MinDB
}

var levels = [MaxLevel]Level{
	{Number: 1, MinDB: 60, MaxDB: 90, Indicator: led.Color{R: 0, G: 30, B: 70}, CalibrationFactor: 0.55},
	{Number: 2, MinDB: 50, MaxDB: 80, Indicator: led.Color{R: 0, G: 50, B: 50}, CalibrationFactor: 0.6},
	{Number: 3, MinDB: 40, MaxDB: 70, Indicator: led.Color{R: 50, G: 50, B: 0}, CalibrationFactor: 0.7},
	{Number: 4, MinDB: 30, MaxDB: 60, Indicator: led.Color{R: 80, G: 30, B: 0}, CalibrationFactor: 0.8},
	{Number: 5, MinDB: 20, MaxDB: 50, Indicator: led.Color{R: 80, G: 0, B: 0}, CalibrationFactor: 0.9},
}

// Lookup returns the level record for n. n outside [MinLevel, MaxLevel] is a
// programming error.
func Lookup(n int) Level {
	if n < MinLevel || n > MaxLevel {
		panic(fmt.Sprintf("sensitivity: level %d out of range", n))
	}
	return levels[n-1]
}

// Levels returns a copy of the full level table in ascending order.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels[:])
	return out
}
