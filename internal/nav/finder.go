package nav

import (
	"math/rand"

	"github.com/Rushhhy/sim-game/internal/grid"
)

// Finder binds a grid and settings so consumers receive them through their
// constructors.
type Finder struct {
	grid     *grid.Grid
	settings Settings
}

// NewFinder constructs a Finder. A nil grid yields a fail-open finder.
func NewFinder(g *grid.Grid, s Settings) *Finder {
	return &Finder{grid: g, settings: s.Normalized()}
}

func (f *Finder) Grid() *grid.Grid { return f.grid }

func (f *Finder) Settings() Settings { return f.settings }

// SetSettings swaps the tuning for subsequent queries.
func (f *Finder) SetSettings(s Settings) { f.settings = s.Normalized() }

func (f *Finder) Walkable(c grid.Cell) bool {
	return IsWalkable(c, f.grid, f.settings)
}

func (f *Finder) WalkableAt(p Vec2) bool {
	return IsWalkableAt(p, f.grid, f.settings)
}

func (f *Finder) FindPath(start, goal grid.Cell) (Plan, error) {
	return FindPath(start, goal, f.grid, f.settings)
}

func (f *Finder) FindPathToArea(start, center grid.Cell, radius int) (Plan, error) {
	return FindPathToArea(start, center, radius, f.grid, f.settings)
}

func (f *Finder) FindPathAroundGoal(start, center grid.Cell, radius int) (Plan, error) {
	return FindPathAroundGoal(start, center, radius, f.grid, f.settings)
}

func (f *Finder) NearestWalkable(c grid.Cell) (grid.Cell, bool) {
	return NearestWalkable(c, f.grid, f.settings)
}

func (f *Finder) RandomWalkable(center Vec2, radius float64, rng *rand.Rand) (Vec2, bool) {
	return RandomWalkable(center, radius, rng, f.grid, f.settings)
}

func (f *Finder) Avoid(current, target Vec2) Vec2 {
	return AvoidanceDirection(current, target, f.grid, f.settings)
}

func (f *Finder) ClearLine(a, b Vec2) bool {
	return ClearLine(a, b, f.grid, f.settings)
}

// Revision forwards the grid mutation counter.
func (f *Finder) Revision() uint64 {
	return f.grid.Revision()
}
