// Package led models the 5x5 serpentine LED matrix: cell colours, the
// frame buffer handed to the strip driver and the coordinate mapping.
package led

import "fmt"

const (
	// Width is the number of columns in the matrix.
	Width = 5
	// Height is the number of rows in the matrix.
	Height = 5
	// Count is the total number of cells.
	Count = Width * Height
)

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Off is the colour of an unlit cell.
var Off = Color{}

// IsOff reports whether every component is zero.
func (c Color) IsOff() bool {
	return c == Off
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Frame is the full matrix state in strip (index) order.
type Frame [Count]Color

// Clear switches every cell off.
func (f *Frame) Clear() {
	*f = Frame{}
}

// Set assigns a colour to the cell at the linear strip index.
func (f *Frame) Set(index int, c Color) {
	if index < 0 || index >= Count {
		panic(fmt.Sprintf("led: index %d out of range", index))
	}
	f[index] = c
}

// SetXY assigns a colour using matrix coordinates.
func (f *Frame) SetXY(x, y int, c Color) {
	f[Index(x, y)] = c
}

// At returns the colour of the cell at (x, y).
func (f *Frame) At(x, y int) Color {
	return f[Index(x, y)]
}

// Lit returns the strip indices of every cell that is not off, ascending.
func (f *Frame) Lit() []int {
	lit := make([]int, 0, Count)
	for i, c := range f {
		if !c.IsOff() {
			lit = append(lit, i)
		}
	}
	return lit
}
