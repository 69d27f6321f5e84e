package nav

import (
	"math"

	"github.com/Rushhhy/sim-game/internal/grid"
)

var avoidanceAngles = [...]float64{45, -45, 90, -90, 135, -135}

const lineSampleStep = 0.25

func directionClear(pos, dir Vec2, g *grid.Grid, s Settings) bool {
	return IsWalkableAt(pos.Add(dir.Scale(s.ObstacleDetectionDistance)), g, s)
}

// AvoidanceDirection steers from current toward target without a plan. It
// returns the straight direction when its probe point is clear, otherwise
// the first clear rotated candidate blended back toward the target. The
// zero vector means every sampled direction is blocked.
func AvoidanceDirection(current, target Vec2, g *grid.Grid, s Settings) Vec2 {
	s = s.Normalized()
	desired := target.Sub(current).Normalize()
	if desired.IsZero() {
		return Vec2{}
	}
	if directionClear(current, desired, g, s) {
		return desired
	}
	for i, angle := range avoidanceAngles {
		if i >= s.MaxAvoidanceAttempts {
			break
		}
		candidate := desired.Rotate(angle)
		if !directionClear(current, candidate, g, s) {
			continue
		}
		blended := desired.Lerp(candidate, s.SteeringForce).Normalize()
		if !blended.IsZero() && directionClear(current, blended, g, s) {
			return blended
		}
		return candidate
	}
	return Vec2{}
}

// ClearLine reports whether every cell touched by the segment from a to b is
// walkable, sampling at quarter-cell steps.
func ClearLine(a, b Vec2, g *grid.Grid, s Settings) bool {
	length := a.Dist(b)
	steps := int(math.Ceil(length / lineSampleStep))
	prev := WorldToCell(a)
	for i := 1; i <= steps; i++ {
		p := a.Lerp(b, float64(i)/float64(steps))
		cell := WorldToCell(p)
		if cell == prev {
			continue
		}
		if !IsWalkable(cell, g, s) {
			return false
		}
		if cell.X != prev.X && cell.Y != prev.Y {
			// Crossed a corner between samples.
			if !IsWalkable(grid.Cell{X: cell.X, Y: prev.Y}, g, s) || !IsWalkable(grid.Cell{X: prev.X, Y: cell.Y}, g, s) {
				return false
			}
		}
		prev = cell
	}
	return true
}
