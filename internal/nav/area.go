package nav

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Rushhhy/sim-game/internal/grid"
)

// ring returns the cells at exactly Chebyshev distance r from center, in
// row order. Radius zero yields the center alone.
func ring(center grid.Cell, r int) []grid.Cell {
	if r == 0 {
		return []grid.Cell{center}
	}
	cells := make([]grid.Cell, 0, 8*r)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if abs(dx) != r && abs(dy) != r {
				continue
			}
			cells = append(cells, grid.Cell{X: center.X + dx, Y: center.Y + dy})
		}
	}
	return cells
}

// byDistance orders cells by their straight-line distance to origin. The
// sort is stable so row order breaks ties.
func byDistance(cells []grid.Cell, origin grid.Cell) {
	sort.SliceStable(cells, func(i, j int) bool {
		return distSq(cells[i], origin) < distSq(cells[j], origin)
	})
}

func distSq(a, b grid.Cell) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// FindPathToArea plans a route to any walkable cell within radius of center.
// Rings are searched outward in square shells; inside each shell the cells
// closest to start are tried first.
func FindPathToArea(start, center grid.Cell, radius int, g *grid.Grid, s Settings) (Plan, error) {
	return searchRings(start, center, 0, radius, g, s)
}

// FindPathAroundGoal is FindPathToArea for callers whose direct search to
// center already failed: ring 0 is skipped.
func FindPathAroundGoal(start, center grid.Cell, radius int, g *grid.Grid, s Settings) (Plan, error) {
	return searchRings(start, center, 1, radius, g, s)
}

func searchRings(start, center grid.Cell, from, radius int, g *grid.Grid, s Settings) (Plan, error) {
	s = s.Normalized()
	if radius < 0 {
		radius = 0
	}
	for r := from; r <= radius; r++ {
		candidates := ring(center, r)
		byDistance(candidates, start)
		for _, c := range candidates {
			if !IsWalkable(c, g, s) {
				continue
			}
			plan, err := FindPath(start, c, g, s)
			if err == nil {
				return plan, nil
			}
		}
	}
	return Plan{}, fmt.Errorf("find path %s -> area %s radius %d: %w", start, center, radius, ErrPathNotFound)
}

// NearestWalkable searches square shells outward from c, up to
// MaxRepositionSearchRadius, and returns the closest walkable cell.
func NearestWalkable(c grid.Cell, g *grid.Grid, s Settings) (grid.Cell, bool) {
	s = s.Normalized()
	for r := 0; r <= s.MaxRepositionSearchRadius; r++ {
		candidates := ring(c, r)
		byDistance(candidates, c)
		for _, candidate := range candidates {
			if IsWalkable(candidate, g, s) {
				return candidate, true
			}
		}
	}
	return grid.Cell{}, false
}

// RandomWalkable samples up to MaxRandomAttempts points uniformly inside the
// disc of the given radius and returns the first walkable one.
func RandomWalkable(center Vec2, radius float64, rng *rand.Rand, g *grid.Grid, s Settings) (Vec2, bool) {
	s = s.Normalized()
	if rng == nil || radius <= 0 {
		return Vec2{}, false
	}
	for attempt := 0; attempt < s.MaxRandomAttempts; attempt++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := math.Sqrt(rng.Float64()) * radius
		sin, cos := math.Sincos(angle)
		candidate := center.Add(Vec2{X: cos * dist, Y: sin * dist})
		if IsWalkableAt(candidate, g, s) {
			return candidate, true
		}
	}
	return Vec2{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
