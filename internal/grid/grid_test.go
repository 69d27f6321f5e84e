package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid() *Grid {
	g := New()
	g.AddRegion(Cell{X: 0, Y: 0}, Cell{X: 9, Y: 9})
	return g
}

func TestCanPlaceRejectsOversizedFootprint(t *testing.T) {
	g := newTestGrid()

	assert.False(t, g.CanPlace(Cell{}, Size{W: 6000, H: 6000}))
	assert.False(t, g.CanPlace(Cell{}, Size{W: 11, H: 10}))
	assert.False(t, g.CanPlace(Cell{}, Size{W: 1 << 32, H: 1 << 32}))
	assert.False(t, g.CanPlace(Cell{}, Size{W: math.MaxInt, H: 2}))
	assert.True(t, g.CanPlace(Cell{}, Size{W: 10, H: 10}))

	_, ok := g.Place(Cell{}, Size{W: 1 << 32, H: 1 << 32}, 20, 0, KindStructure)
	assert.False(t, ok)
	assert.Empty(t, g.Entries())
}

func TestSizeArea(t *testing.T) {
	area, ok := Size{W: 3, H: 4}.Area()
	require.True(t, ok)
	assert.Equal(t, 12, area)

	_, ok = Size{W: 1 << 32, H: 1 << 32}.Area()
	assert.False(t, ok)
	_, ok = Size{W: 0, H: 4}.Area()
	assert.False(t, ok)
	assert.Nil(t, Footprint(Cell{}, Size{W: 1 << 32, H: 1 << 32}))
}

func TestPlaceThenCanPlaceFails(t *testing.T) {
	g := newTestGrid()
	origin := Cell{X: 2, Y: 3}

	require.True(t, g.CanPlace(origin, Square(2)))
	entry, ok := g.Place(origin, Square(2), 20, 0, KindStructure)
	require.True(t, ok)
	assert.Len(t, entry.Cells, 4)

	assert.False(t, g.CanPlace(origin, Square(2)))
	assert.False(t, g.CanPlace(Cell{X: 3, Y: 4}, Square(1)))
	assert.True(t, g.CanPlace(Cell{X: 4, Y: 3}, Square(1)))
}

func TestRemoveAtClearsEveryFootprintCell(t *testing.T) {
	g := newTestGrid()
	origin := Cell{X: 1, Y: 1}
	_, ok := g.Place(origin, Size{W: 3, H: 2}, 17, 4, KindStructure)
	require.True(t, ok)

	removed, ok := g.RemoveAt(Cell{X: 3, Y: 2})
	require.True(t, ok)
	assert.Equal(t, 4, removed.Owner)

	for _, c := range Footprint(origin, Size{W: 3, H: 2}) {
		assert.Nil(t, g.EntryAt(c), "cell %s still occupied", c)
	}
	assert.True(t, g.CanPlace(origin, Size{W: 3, H: 2}))

	_, ok = g.RemoveAt(origin)
	assert.False(t, ok)
}

func TestPlacementChecksBothLayers(t *testing.T) {
	g := newTestGrid()
	_, ok := g.Place(Cell{X: 5, Y: 5}, Square(1), 30, 0, KindDecoration)
	require.True(t, ok)

	_, ok = g.Place(Cell{X: 4, Y: 4}, Square(2), 20, 1, KindStructure)
	assert.False(t, ok, "structure must not overlap a decoration")
	assert.Equal(t, 30, g.CategoryAt(Cell{X: 5, Y: 5}))
	assert.Nil(t, g.EntryAt(Cell{X: 4, Y: 4}), "failed placement must not mutate")
}

func TestCanPlaceRejectsOutsideBoundaryAndNature(t *testing.T) {
	g := newTestGrid()
	assert.False(t, g.CanPlace(Cell{X: 9, Y: 9}, Square(2)))
	assert.False(t, g.CanPlace(Cell{X: -1, Y: 0}, Square(1)))
	assert.False(t, g.CanPlace(Cell{X: 0, Y: 0}, Size{}))

	g.MarkNature(Cell{X: 6, Y: 6})
	assert.False(t, g.CanPlace(Cell{X: 5, Y: 5}, Square(2)))
}

func TestPlaceFixedRejectsOccupiedCell(t *testing.T) {
	g := newTestGrid()
	_, ok := g.Place(Cell{X: 0, Y: 0}, Square(1), 3, 0, KindStructure)
	require.True(t, ok)
	before := g.Revision()

	_, err := g.PlaceFixed([]Cell{{X: 1, Y: 0}, {X: 0, Y: 0}}, 38, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOccupiedCell))

	var occupied *OccupiedCellError
	require.True(t, errors.As(err, &occupied))
	assert.Equal(t, Cell{X: 0, Y: 0}, occupied.Cell)
	assert.Nil(t, g.EntryAt(Cell{X: 1, Y: 0}))
	assert.Equal(t, before, g.Revision())

	_, err = g.PlaceFixed(nil, 38, 0)
	assert.ErrorIs(t, err, ErrEmptyFootprint)
}

func TestPlaceFixedAcceptsIrregularFootprint(t *testing.T) {
	g := New()
	cells := []Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	entry, err := g.PlaceFixed(cells, 38, 2)
	require.NoError(t, err)
	assert.Len(t, entry.Cells, 3)
	assert.Equal(t, KindStructure, entry.Kind)
	assert.Equal(t, 2, g.OwnerIndexAt(Cell{X: 1, Y: 1}))
	assert.Equal(t, NoOwner, g.OwnerIndexAt(Cell{X: 0, Y: 1}))
}

func TestRemoveAtPrefersStructureLayer(t *testing.T) {
	g := New()
	structure, err := g.PlaceFixed([]Cell{{X: 0, Y: 0}}, 40, 0)
	require.NoError(t, err)
	// Decorations never overlap through Place, so seed the layer directly.
	decoration := &Entry{Cells: []Cell{{X: 0, Y: 0}}, Category: 50, Owner: 1, Kind: KindDecoration}
	g.commit(decoration)

	assert.Same(t, structure, g.EntryAt(Cell{X: 0, Y: 0}))
	removed, ok := g.RemoveAt(Cell{X: 0, Y: 0})
	require.True(t, ok)
	assert.Same(t, structure, removed)
	removed, ok = g.RemoveAt(Cell{X: 0, Y: 0})
	require.True(t, ok)
	assert.Same(t, decoration, removed)
}

func TestNeighborCategoriesOrder(t *testing.T) {
	g := newTestGrid()
	center := Cell{X: 5, Y: 5}
	_, ok := g.Place(Cell{X: 6, Y: 5}, Square(1), 0, 0, KindStructure)
	require.True(t, ok)
	_, ok = g.Place(Cell{X: 5, Y: 6}, Square(1), 15, 1, KindStructure)
	require.True(t, ok)
	_, ok = g.Place(Cell{X: 4, Y: 5}, Square(1), 16, 2, KindStructure)
	require.True(t, ok)

	assert.Equal(t, [4]bool{true, false, true, false}, g.NeighborCategories(center))
	assert.Equal(t, []Cell{{X: 6, Y: 5}, {X: 5, Y: 6}}, g.NeighborRoadCells(center))
}

func TestRegionsAreInclusiveAndIdempotent(t *testing.T) {
	g := New()
	g.AddRegion(Cell{X: 2, Y: 2}, Cell{X: 0, Y: 0})
	assert.Equal(t, 9, g.BoundarySize())
	rev := g.Revision()
	g.AddRegion(Cell{X: 0, Y: 0}, Cell{X: 2, Y: 2})
	assert.Equal(t, rev, g.Revision())

	g.RemoveRegion(Cell{X: 1, Y: 1}, Cell{X: 1, Y: 1})
	assert.False(t, g.InBoundary(Cell{X: 1, Y: 1}))
	assert.Equal(t, 8, g.BoundarySize())
	g.RemoveRegion(Cell{X: 1, Y: 1}, Cell{X: 1, Y: 1})
	assert.Equal(t, 8, g.BoundarySize())

	min, max, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, Cell{X: 0, Y: 0}, min)
	assert.Equal(t, Cell{X: 2, Y: 2}, max)
}

func TestReindexOwners(t *testing.T) {
	g := newTestGrid()
	for i := 0; i < 3; i++ {
		_, ok := g.Place(Cell{X: i * 2, Y: 0}, Square(1), 20, i, KindStructure)
		require.True(t, ok)
	}
	_, ok := g.RemoveAt(Cell{X: 2, Y: 0})
	require.True(t, ok)

	assert.Equal(t, 1, g.ReindexOwners(1))
	assert.Equal(t, 0, g.OwnerIndexAt(Cell{X: 0, Y: 0}))
	assert.Equal(t, 1, g.OwnerIndexAt(Cell{X: 4, Y: 0}))
}

func TestEntriesAreDistinct(t *testing.T) {
	g := newTestGrid()
	_, ok := g.Place(Cell{X: 0, Y: 0}, Square(3), 20, 1, KindStructure)
	require.True(t, ok)
	_, ok = g.Place(Cell{X: 5, Y: 5}, Square(1), 30, 0, KindDecoration)
	require.True(t, ok)

	entries := g.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, KindStructure, entries[0].Kind)
	assert.Equal(t, KindDecoration, entries[1].Kind)
}
