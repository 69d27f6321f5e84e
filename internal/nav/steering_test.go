package nav

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushhhy/sim-game/internal/grid"
)

func TestAvoidanceDirectionClearPath(t *testing.T) {
	g := squareGrid(10)
	dir := AvoidanceDirection(Vec2{X: 1.5, Y: 5.5}, Vec2{X: 8.5, Y: 5.5}, g, DefaultSettings())
	assert.InDelta(t, 1, dir.X, 1e-9)
	assert.InDelta(t, 0, dir.Y, 1e-9)
}

func TestAvoidanceDirectionSteersAroundWall(t *testing.T) {
	g := squareGrid(10)
	// Wall right in front of the agent, open above.
	block(t, g, grid.Cell{X: 4, Y: 5}, grid.Cell{X: 4, Y: 4}, grid.Cell{X: 4, Y: 3})
	s := DefaultSettings()
	current := Vec2{X: 2.5, Y: 5.5}

	dir := AvoidanceDirection(current, Vec2{X: 8.5, Y: 5.5}, g, s)
	require.False(t, dir.IsZero())
	assert.InDelta(t, 1, dir.Len(), 1e-9)
	assert.Greater(t, dir.Y, 0.0, "expected to turn toward the open side")
	assert.True(t, IsWalkableAt(current.Add(dir.Scale(s.ObstacleDetectionDistance)), g, s))
}

func TestAvoidanceDirectionBlendsWhenClear(t *testing.T) {
	g := squareGrid(10)
	block(t, g, grid.Cell{X: 4, Y: 5})
	s := DefaultSettings()
	current := Vec2{X: 3.0, Y: 5.5}
	desired := Vec2{X: 1, Y: 0}

	dir := AvoidanceDirection(current, Vec2{X: 9, Y: 5.5}, g, s)
	candidate := desired.Rotate(45)
	blended := desired.Lerp(candidate, s.SteeringForce).Normalize()
	assert.InDelta(t, blended.X, dir.X, 1e-9)
	assert.InDelta(t, blended.Y, dir.Y, 1e-9)
}

func TestAvoidanceDirectionEnclosed(t *testing.T) {
	g := grid.New()
	g.AddCells(grid.Cell{X: 0, Y: 0})
	dir := AvoidanceDirection(Vec2{X: 0.5, Y: 0.5}, Vec2{X: 5, Y: 0.5}, g, DefaultSettings())
	assert.True(t, dir.IsZero())

	dir = AvoidanceDirection(Vec2{X: 0.5, Y: 0.5}, Vec2{X: 0.5, Y: 0.5}, g, DefaultSettings())
	assert.True(t, dir.IsZero())
}

func TestRotate(t *testing.T) {
	v := Vec2{X: 1, Y: 0}.Rotate(90)
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 1, v.Y, 1e-9)
	v = Vec2{X: 1, Y: 0}.Rotate(-135)
	assert.InDelta(t, -math.Sqrt2/2, v.X, 1e-9)
	assert.InDelta(t, -math.Sqrt2/2, v.Y, 1e-9)
}

func TestNearestWalkable(t *testing.T) {
	g := squareGrid(10)
	house := grid.Cell{X: 5, Y: 5}
	_, ok := g.Place(house, grid.Square(3), testHouseCategory, 0, grid.KindStructure)
	require.True(t, ok)

	got, ok := NearestWalkable(grid.Cell{X: 6, Y: 6}, g, DefaultSettings())
	require.True(t, ok)
	assert.Equal(t, 2, got.Chebyshev(grid.Cell{X: 6, Y: 6}))
	assert.True(t, IsWalkable(got, g, DefaultSettings()))

	free := grid.Cell{X: 1, Y: 1}
	got, ok = NearestWalkable(free, g, DefaultSettings())
	require.True(t, ok)
	assert.Equal(t, free, got)
}

func TestNearestWalkableRespectsRadius(t *testing.T) {
	g := squareGrid(3)
	s := DefaultSettings()
	s.MaxRepositionSearchRadius = 2
	_, ok := NearestWalkable(grid.Cell{X: 20, Y: 20}, g, s)
	assert.False(t, ok)
}

func TestRandomWalkable(t *testing.T) {
	g := squareGrid(10)
	rng := rand.New(rand.NewSource(7))
	center := Vec2{X: 5, Y: 5}
	for i := 0; i < 20; i++ {
		p, ok := RandomWalkable(center, 3, rng, g, DefaultSettings())
		require.True(t, ok)
		assert.LessOrEqual(t, p.Dist(center), 3.0)
		assert.True(t, IsWalkableAt(p, g, DefaultSettings()))
	}

	empty := grid.New()
	_, ok := RandomWalkable(center, 3, rng, empty, DefaultSettings())
	assert.False(t, ok)
}

func TestClearLine(t *testing.T) {
	g := squareGrid(10)
	block(t, g, grid.Cell{X: 5, Y: 5})
	s := DefaultSettings()

	assert.True(t, ClearLine(Vec2{X: 0.5, Y: 0.5}, Vec2{X: 9.5, Y: 0.5}, g, s))
	assert.False(t, ClearLine(Vec2{X: 0.5, Y: 5.5}, Vec2{X: 9.5, Y: 5.5}, g, s))
	assert.True(t, ClearLine(Vec2{X: 2.5, Y: 2.5}, Vec2{X: 2.5, Y: 2.5}, g, s))
}
