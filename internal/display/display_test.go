package display

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		db   float64
		want string
	}{
		{0, "Silent"},
		{29.9, "Silent"},
		{30, "Moderate"},
		{59.9, "Moderate"},
		{60, "Loud"},
		{89.9, "Loud"},
		{90, "Dangerous"},
		{130, "Dangerous"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.db), "db=%v", tt.db)
	}
}

func TestProgress(t *testing.T) {
	l1 := sensitivity.Lookup(1) // full scale 108 dB
	assert.Equal(t, uint8(0), Progress(0, l1))
	assert.Equal(t, uint8(0), Progress(-5, l1))
	assert.Equal(t, uint8(55), Progress(60, l1))
	assert.Equal(t, uint8(67), Progress(73.2, l1))
	assert.Equal(t, uint8(100), Progress(120, l1))
	assert.Equal(t, uint8(100), Progress(500, l1))

	l5 := sensitivity.Lookup(5) // full scale 60 dB
	assert.Equal(t, uint8(66), Progress(40, l5))
}

func TestLevelGauge(t *testing.T) {
	assert.Equal(t, "■----", LevelGauge(1))
	assert.Equal(t, "■■■--", LevelGauge(3))
	assert.Equal(t, "■■■■■", LevelGauge(5))
}

func TestNewReadout(t *testing.T) {
	r := NewReadout(73.24, sensitivity.Lookup(2))
	assert.Equal(t, "73.2 dB", r.Text)
	assert.Equal(t, "Loud", r.Label)
	assert.Equal(t, 2, r.Level)
	assert.Equal(t, "■■---", r.LevelGauge)
	assert.Equal(t, uint8(76), r.Progress)
	assert.Equal(t, 73.24, r.DB)
}

func TestConsoleShowReadout(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.ShowReadout(NewReadout(45, sensitivity.Lookup(3)))

	line := buf.String()
	assert.Contains(t, line, "45.0 dB")
	assert.Contains(t, line, "Moderate")
	assert.Contains(t, line, "Sens: ■■■--")
	assert.Contains(t, line, "53%")
}
