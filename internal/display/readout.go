// Package display derives the text readout shown next to the LED matrix.
package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

// Label thresholds in dB.
const (
	SilentBelow   = 30.0
	ModerateBelow = 60.0
	LoudBelow     = 90.0
)

// ProgressHeadroom scales the level maximum to the full progress bar.
const ProgressHeadroom = 1.2

// Readout is everything the text display shows for one cycle.
type Readout struct {
	DB         float64
	Text       string
	Label      string
	Progress   uint8
	Level      int
	LevelGauge string
}

// NewReadout formats db for the given level.
func NewReadout(db float64, level sensitivity.Level) Readout {
	return Readout{
		DB:         db,
		Text:       fmt.Sprintf("%.1f dB", db),
		Label:      Label(db),
		Progress:   Progress(db, level),
		Level:      level.Number,
		LevelGauge: LevelGauge(level.Number),
	}
}

// Label classifies db into a qualitative loudness band.
func Label(db float64) string {
	switch {
	case db < SilentBelow:
		return "Silent"
	case db < ModerateBelow:
		return "Moderate"
	case db < LoudBelow:
		return "Loud"
	default:
		return "Dangerous"
	}
}

// Progress maps db onto 0-100 against the level maximum plus headroom.
// The fractional part is truncated.
func Progress(db float64, level sensitivity.Level) uint8 {
	full := level.MaxDB * ProgressHeadroom
	if db <= 0 || full <= 0 || math.IsNaN(db) {
		return 0
	}
	p := db / full * 100
	if p >= 100 {
		return 100
	}
	return uint8(p)
}

// LevelGauge renders the level as five slots, filled up to n.
func LevelGauge(n int) string {
	var b strings.Builder
	for i := range sensitivity.MaxLevel {
		if i < n {
			b.WriteString("■")
		} else {
			b.WriteString("-")
		}
	}
	return b.String()
}
