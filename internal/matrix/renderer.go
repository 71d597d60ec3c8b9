// Package matrix renders meter readings and digit glyphs onto LED frames.
package matrix

import (
	"math"

	"github.com/cybre/matrix-sound-meter/internal/led"
	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
	"github.com/cybre/matrix-sound-meter/internal/utils"
)

const (
	// MeterRows is the number of rows available to the level meter.
	MeterRows = led.Height
	// FlashPeriodMs is the blink period used when the reading is far above
	// the level range.
	FlashPeriodMs = 200
	// FlashMargin is how far above MaxDB a reading must be to blink.
	FlashMargin = 10.0
)

var (
	meterColumns     = [2]int{0, 1}
	indicatorColumns = [2]int{3, 4}
)

// Palette holds the colours used by the meter.
type Palette struct {
	Low      led.Color
	Mid      led.Color
	High     led.Color
	Overload led.Color
}

// DefaultPalette matches the brightness budget of the reference hardware.
func DefaultPalette() Palette {
	return Palette{
		Low:      led.Color{G: 30},
		Mid:      led.Color{R: 50, G: 50},
		High:     led.Color{R: 80},
		Overload: led.Color{R: 100},
	}
}

// Renderer maps a calibrated reading onto the matrix. Columns 0-1 show the
// measurement and columns 3-4 show the sensitivity level. It keeps no state
// between frames.
type Renderer struct {
	palette Palette
}

// NewRenderer constructs a Renderer. A zero palette selects DefaultPalette.
func NewRenderer(palette Palette) *Renderer {
	if palette == (Palette{}) {
		palette = DefaultPalette()
	}
	return &Renderer{palette: palette}
}

// Render builds a fresh frame for db at the given level. elapsedMs is the
// wall-clock time since start and only drives the overload blink. A negative
// db yields an empty frame.
func (r *Renderer) Render(db float64, level sensitivity.Level, elapsedMs uint64) led.Frame {
	var frame led.Frame
	if db < 0 || math.IsNaN(db) {
		return frame
	}

	for y := 0; y < level.Number && y < led.Height; y++ {
		for _, x := range indicatorColumns {
			frame.SetXY(x, y, level.Indicator)
		}
	}

	rows := RowsToLight(db, level)
	for y := range rows {
		c := r.rowColor(y, db, level, elapsedMs)
		for _, x := range meterColumns {
			frame.SetXY(x, y, c)
		}
	}

	return frame
}

func (r *Renderer) rowColor(y int, db float64, level sensitivity.Level, elapsedMs uint64) led.Color {
	if db > level.MaxDB {
		if db > level.MaxDB+FlashMargin && elapsedMs%FlashPeriodMs < FlashPeriodMs/2 {
			return led.Off
		}
		return r.palette.Overload
	}

	switch {
	case y == 0:
		return r.palette.Low
	case y <= 2:
		return r.palette.Mid
	default:
		return r.palette.High
	}
}

// Position returns where db sits inside the level range, clamped to [0, 1].
// At MaxLevel a reading below MinDB is treated as MinDB.
func Position(db float64, level sensitivity.Level) float64 {
	if level.Number == sensitivity.MaxLevel && db < level.MinDB {
		db = level.MinDB
	}
	span := level.Span()
	if span <= 0 {
		return 0
	}
	return utils.Clamp((db-level.MinDB)/span, 0.0, 1.0)
}

// RowsToLight returns how many meter rows db lights. Rounding is to nearest
// with ties away from zero. A silent reading lights nothing; at MaxLevel any
// non-silent reading lights at least one row.
func RowsToLight(db float64, level sensitivity.Level) int {
	if db <= 0 || math.IsNaN(db) {
		return 0
	}
	rows := int(math.Round(Position(db, level) * MeterRows))
	if level.Number == sensitivity.MaxLevel && rows == 0 {
		rows = 1
	}
	return rows
}
