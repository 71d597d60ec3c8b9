package led

import "fmt"

// Index converts matrix coordinates to the strip index. The strip is wired
// boustrophedon: even rows run left to right, odd rows right to left.
// Row 0 is the bottom row.
//
//	4 | 20 21 22 23 24
//	3 | 19 18 17 16 15
//	2 | 10 11 12 13 14
//	1 | 09 08 07 06 05
//	0 | 00 01 02 03 04
//	    x=0         x=4
func Index(x, y int) int {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		panic(fmt.Sprintf("led: coordinate (%d,%d) out of range", x, y))
	}
	if y%2 == 0 {
		return y*Width + x
	}
	return y*Width + (Width - 1 - x)
}

// Coord is the inverse of Index.
func Coord(index int) (x, y int) {
	if index < 0 || index >= Count {
		panic(fmt.Sprintf("led: index %d out of range", index))
	}
	y = index / Width
	x = index % Width
	if y%2 != 0 {
		x = Width - 1 - x
	}
	return x, y
}
