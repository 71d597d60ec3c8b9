package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybre/matrix-sound-meter/internal/led"
)

func TestRenderDigitMatchesBitmap(t *testing.T) {
	c := led.Color{R: 10, G: 20, B: 30}
	for n := range 10 {
		f := RenderDigit(n, c)
		glyph := DigitGlyph(n)
		for y := range led.Height {
			for x := range led.Width {
				if glyph[y][x] == 1 {
					assert.Equal(t, c, f.At(x, y), "digit %d (%d,%d)", n, x, y)
				} else {
					assert.True(t, f.At(x, y).IsOff(), "digit %d (%d,%d)", n, x, y)
				}
			}
		}
	}
}

func TestDigitGlyphsAreDistinct(t *testing.T) {
	seen := make(map[Glyph]int)
	for n := range 10 {
		g := DigitGlyph(n)
		prev, dup := seen[g]
		assert.False(t, dup, "digit %d duplicates %d", n, prev)
		seen[g] = n
	}
}

func TestRenderDigitZeroUsesSerpentineIndex(t *testing.T) {
	f := RenderDigit(0, led.Color{R: 1})
	// the hollow centre of zero
	assert.True(t, f[led.Index(2, 2)].IsOff())
	assert.Len(t, f.Lit(), 16)
}

func TestRenderDigitOutOfRange(t *testing.T) {
	assert.Panics(t, func() { RenderDigit(10, led.Color{}) })
	assert.Panics(t, func() { RenderDigit(-1, led.Color{}) })
}

func TestRenderLineAndColumn(t *testing.T) {
	c := led.Color{G: 5}

	var f led.Frame
	RenderLine(&f, 1, c)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, f.Lit())

	f.Clear()
	RenderColumn(&f, 0, c)
	assert.Equal(t, []int{0, 9, 10, 19, 20}, f.Lit())

	assert.Panics(t, func() { RenderLine(&f, 5, c) })
	assert.Panics(t, func() { RenderColumn(&f, -1, c) })
}
