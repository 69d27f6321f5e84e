package nav

import (
	"math"

	"github.com/Rushhhy/sim-game/internal/grid"
)

// Vec2 is a world-space position or direction. One cell spans one unit.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{X: v.X * f, Y: v.Y * f} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Normalize returns the unit vector, or zero for a zero-length input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Lerp interpolates from v toward o by t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// Rotate turns v counter-clockwise by deg degrees.
func (v Vec2) Rotate(deg float64) Vec2 {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// WorldToCell returns the cell containing p.
func WorldToCell(p Vec2) grid.Cell {
	return grid.Cell{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))}
}

// CellCenter returns the world position at the middle of c.
func CellCenter(c grid.Cell) Vec2 {
	return Vec2{X: float64(c.X) + 0.5, Y: float64(c.Y) + 0.5}
}
