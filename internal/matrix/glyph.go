package matrix

import (
	"fmt"

	"github.com/cybre/matrix-sound-meter/internal/led"
)

// Glyph is a 5x5 bitmap indexed [y][x]; 1 marks a lit cell.
type Glyph [led.Height][led.Width]uint8

var digits = [10]Glyph{
	{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	},
	{
		{0, 1, 1, 1, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 1, 1, 0},
		{0, 0, 1, 0, 0},
	},
	{
		{1, 1, 1, 1, 1},
		{0, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
	},
	{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 0},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
	},
	{
		{0, 1, 0, 0, 0},
		{0, 1, 0, 0, 0},
		{1, 1, 1, 1, 1},
		{0, 1, 0, 0, 1},
		{0, 1, 0, 0, 1},
	},
	{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
		{0, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	},
	{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
		{0, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	},
	{
		{0, 0, 0, 1, 0},
		{0, 0, 1, 0, 0},
		{0, 1, 0, 0, 0},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
	},
	{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	},
	{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	},
}

// DigitGlyph returns the bitmap for digit n (0-9).
func DigitGlyph(n int) Glyph {
	if n < 0 || n >= len(digits) {
		panic(fmt.Sprintf("matrix: digit %d out of range", n))
	}
	return digits[n]
}

// RenderDigit returns a frame showing digit n in colour c.
func RenderDigit(n int, c led.Color) led.Frame {
	glyph := DigitGlyph(n)

	var frame led.Frame
	for y, row := range glyph {
		for x, on := range row {
			if on == 1 {
				frame.SetXY(x, y, c)
			}
		}
	}
	return frame
}

// RenderLine lights every cell of row y in colour c.
func RenderLine(frame *led.Frame, y int, c led.Color) {
	if y < 0 || y >= led.Height {
		panic(fmt.Sprintf("matrix: row %d out of range", y))
	}
	for x := range led.Width {
		frame.SetXY(x, y, c)
	}
}

// RenderColumn lights every cell of column x in colour c.
func RenderColumn(frame *led.Frame, x int, c led.Color) {
	if x < 0 || x >= led.Width {
		panic(fmt.Sprintf("matrix: column %d out of range", x))
	}
	for y := range led.Height {
		frame.SetXY(x, y, c)
	}
}
