package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybre/matrix-sound-meter/internal/led"
	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

func meterCells(f led.Frame) map[[2]int]led.Color {
	cells := make(map[[2]int]led.Color)
	for y := range led.Height {
		for _, x := range meterColumns {
			if c := f.At(x, y); !c.IsOff() {
				cells[[2]int{x, y}] = c
			}
		}
	}
	return cells
}

func litMeterRows(t *testing.T, f led.Frame) int {
	t.Helper()
	rows := 0
	for y := range led.Height {
		left, right := f.At(0, y), f.At(1, y)
		require.Equal(t, left, right, "meter columns differ on row %d", y)
		if !left.IsOff() {
			require.Equal(t, rows, y, "meter rows must be contiguous from the bottom")
			rows++
		}
	}
	return rows
}

func TestRenderSilenceLightsNoMeterCells(t *testing.T) {
	r := NewRenderer(Palette{})
	for _, l := range sensitivity.Levels() {
		for _, ts := range []uint64{0, 50, 150, 999} {
			f := r.Render(0, l, ts)
			assert.Empty(t, meterCells(f), "level %d t=%d", l.Number, ts)
		}
	}
}

func TestRenderIndicatorColumns(t *testing.T) {
	r := NewRenderer(Palette{})
	for _, l := range sensitivity.Levels() {
		f := r.Render(0, l, 0)
		for y := range led.Height {
			want := led.Off
			if y < l.Number {
				want = l.Indicator
			}
			assert.Equal(t, want, f.At(3, y), "level %d row %d", l.Number, y)
			assert.Equal(t, want, f.At(4, y), "level %d row %d", l.Number, y)
			assert.True(t, f.At(2, y).IsOff())
		}
	}
}

func TestRenderMidRangeExample(t *testing.T) {
	r := NewRenderer(Palette{})
	level := sensitivity.Lookup(1)

	// (75-60)/30 = 0.5, 0.5*5 = 2.5 rounds away from zero to 3
	f := r.Render(75, level, 0)
	require.Equal(t, 3, litMeterRows(t, f))

	p := DefaultPalette()
	assert.Equal(t, p.Low, f.At(0, 0))
	assert.Equal(t, p.Mid, f.At(0, 1))
	assert.Equal(t, p.Mid, f.At(1, 2))
	assert.True(t, f.At(0, 3).IsOff())
}

func TestRenderGradientBands(t *testing.T) {
	r := NewRenderer(Palette{})
	level := sensitivity.Lookup(1)
	p := DefaultPalette()

	f := r.Render(level.MaxDB, level, 0)
	require.Equal(t, 5, litMeterRows(t, f))
	assert.Equal(t, p.Low, f.At(0, 0))
	assert.Equal(t, p.Mid, f.At(0, 1))
	assert.Equal(t, p.Mid, f.At(0, 2))
	assert.Equal(t, p.High, f.At(0, 3))
	assert.Equal(t, p.High, f.At(0, 4))
}

func TestRowsToLight(t *testing.T) {
	l1 := sensitivity.Lookup(1)
	tests := []struct {
		db   float64
		want int
	}{
		{0, 0},
		{30, 0},
		{60, 0},
		{62.9, 0},
		{63, 1}, // 0.1*5 = 0.5 rounds up
		{66, 1},
		{75, 3},
		{84, 4},
		{90, 5},
		{200, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RowsToLight(tt.db, l1), "db=%v", tt.db)
	}
}

func TestRenderMaxSensitivityMinimumVisibility(t *testing.T) {
	r := NewRenderer(Palette{})
	level := sensitivity.Lookup(5)

	db := 10.0
	f := r.Render(db, level, 0)
	assert.Equal(t, 1, litMeterRows(t, f))
	assert.Equal(t, DefaultPalette().Low, f.At(0, 0))
	assert.Equal(t, 10.0, db)

	assert.Equal(t, 0.0, Position(10, level))
	assert.Equal(t, 0, RowsToLight(0, level))

	// other levels do not get the minimum row
	assert.Equal(t, 0, RowsToLight(10, sensitivity.Lookup(4)))
}

func TestRenderOverload(t *testing.T) {
	r := NewRenderer(Palette{})
	level := sensitivity.Lookup(1)
	p := DefaultPalette()

	for _, ts := range []uint64{0, 50, 150} {
		f := r.Render(95, level, ts)
		require.Equal(t, 5, litMeterRows(t, f))
		for y := range led.Height {
			assert.Equal(t, p.Overload, f.At(0, y))
			assert.Equal(t, p.Overload, f.At(1, y))
		}
	}
}

func TestRenderOverloadFlashes(t *testing.T) {
	r := NewRenderer(Palette{})
	level := sensitivity.Lookup(1)
	p := DefaultPalette()

	off := r.Render(101, level, 0)
	on := r.Render(101, level, 150)

	assert.Empty(t, meterCells(off))
	assert.Len(t, meterCells(on), 10)
	for _, c := range meterCells(on) {
		assert.Equal(t, p.Overload, c)
	}

	// indicator is unaffected by the blink
	assert.Equal(t, level.Indicator, off.At(3, 0))

	assert.Empty(t, meterCells(r.Render(101, level, 1099)))
	assert.Len(t, meterCells(r.Render(101, level, 1100)), 10)

	// exactly max+10 does not blink
	assert.Len(t, meterCells(r.Render(100, level, 0)), 10)
}

func TestRenderNegativeIsEmpty(t *testing.T) {
	r := NewRenderer(Palette{})
	f := r.Render(-3, sensitivity.Lookup(3), 0)
	assert.Empty(t, f.Lit())
}

func TestNewRendererCustomPalette(t *testing.T) {
	p := Palette{Low: led.Color{B: 1}, Mid: led.Color{B: 2}, High: led.Color{B: 3}, Overload: led.Color{B: 4}}
	r := NewRenderer(p)
	f := r.Render(95, sensitivity.Lookup(1), 150)
	assert.Equal(t, led.Color{B: 4}, f.At(0, 0))
}
