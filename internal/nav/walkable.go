package nav

import "github.com/Rushhhy/sim-game/internal/grid"

// IsWalkable applies the layered walkability rules to c. The first matching
// rule wins: forbidden, corridor, boundary, nature, empty, road, blocked.
//
// A nil grid reports every cell as walkable so agents keep moving before the
// world has been loaded.
func IsWalkable(c grid.Cell, g *grid.Grid, s Settings) bool {
	if g == nil {
		return true
	}
	if g.IsForbidden(c) {
		return false
	}
	if s.EnableCorridors && g.IsCorridor(c) {
		return true
	}
	if !g.InBoundary(c) {
		return false
	}
	if g.IsNature(c) && !s.AllowWalkThroughNature {
		return false
	}
	category := g.CategoryAt(c)
	if category == grid.NoCategory {
		return true
	}
	if s.AllowWalkOnRoads && grid.IsRoadCategory(category) {
		return true
	}
	return false
}

// IsWalkableAt reports whether the cell containing p is walkable.
func IsWalkableAt(p Vec2, g *grid.Grid, s Settings) bool {
	return IsWalkable(WorldToCell(p), g, s)
}
