package grid

import (
	"fmt"
	"math"
)

// Cell is an integer grid coordinate. It is used as a map key everywhere.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size describes a rectangular footprint in cells.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Square returns an n by n footprint.
func Square(n int) Size {
	return Size{W: n, H: n}
}

func (c Cell) Add(o Cell) Cell {
	return Cell{X: c.X + o.X, Y: c.Y + o.Y}
}

func (c Cell) Sub(o Cell) Cell {
	return Cell{X: c.X - o.X, Y: c.Y - o.Y}
}

// Chebyshev returns the number of king moves between two cells.
func (c Cell) Chebyshev(o Cell) int {
	dx := abs(c.X - o.X)
	dy := abs(c.Y - o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Manhattan returns the taxicab distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Area returns W*H. ok is false for non-positive sides or when the product
// overflows an int.
func (s Size) Area() (area int, ok bool) {
	if s.W <= 0 || s.H <= 0 {
		return 0, false
	}
	if s.W > math.MaxInt/s.H {
		return 0, false
	}
	return s.W * s.H, true
}

// Footprint lists the cells covered by size at origin, row by row.
func Footprint(origin Cell, size Size) []Cell {
	area, ok := size.Area()
	if !ok {
		return nil
	}
	cells := make([]Cell, 0, area)
	for dy := 0; dy < size.H; dy++ {
		for dx := 0; dx < size.W; dx++ {
			cells = append(cells, Cell{X: origin.X + dx, Y: origin.Y + dy})
		}
	}
	return cells
}

// Rect expands the inclusive rectangle spanned by a and b. Corner order does
// not matter.
func Rect(a, b Cell) []Cell {
	minX, maxX := order(a.X, b.X)
	minY, maxY := order(a.Y, b.Y)
	cells := make([]Cell, 0, (maxX-minX+1)*(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
