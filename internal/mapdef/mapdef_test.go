package mapdef

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushhhy/sim-game/internal/grid"
	"github.com/Rushhhy/sim-game/internal/nav"
)

func TestVillageBuilds(t *testing.T) {
	doc := Village()
	g, err := doc.Build()
	require.NoError(t, err)

	settings := nav.DefaultSettings()
	home := doc.HomeCell()
	assert.True(t, nav.IsWalkable(home, g, settings), "home must be walkable")
	for _, c := range doc.Forbidden {
		assert.False(t, nav.IsWalkable(c, g, settings), "forbidden %v", c)
		assert.True(t, g.InBoundary(c), "forbidden cells sit inside the boundary")
	}
	assert.Equal(t, CategoryMarket, g.CategoryAt(grid.Cell{X: -4, Y: 29}))
	assert.Equal(t, 1, g.OwnerIndexAt(grid.Cell{X: 6, Y: 27}))
	assert.Equal(t, CategoryMine, g.CategoryAt(grid.Cell{X: 14, Y: 37}))
	assert.False(t, g.InBoundary(grid.Cell{X: 15, Y: 38}), "carve-out removed")
	assert.False(t, g.InBoundary(grid.Cell{X: -5, Y: 29}), "removed cell")
	assert.Len(t, g.Entries(), len(doc.Fixed))

	plan, err := nav.FindPath(home, grid.Cell{X: 0, Y: 33}, g, settings)
	require.NoError(t, err)
	assert.Equal(t, grid.Cell{X: 0, Y: 33}, plan.Goal())
}

func TestApplyRejectsOverlappingFixed(t *testing.T) {
	doc := Village()
	g, err := doc.Build()
	require.NoError(t, err)
	revision := g.Revision()

	err = Document{
		Boundary: []Rect{rect(0, 0, 1, 1)},
		Fixed:    []Fixed{{Name: "overlap", Cells: doc.Fixed[0].Cells, Category: CategoryMarket, Owner: 9}},
	}.Apply(g)
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrOccupiedCell))
	assert.Contains(t, err.Error(), "overlap")
	assert.Greater(t, g.Revision(), revision, "boundary edits before the failure still landed")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
		want string
	}{
		{name: "empty boundary", doc: Document{}, want: "empty boundary"},
		{
			name: "no cells",
			doc:  Document{Boundary: []Rect{rect(0, 0, 2, 2)}, Fixed: []Fixed{{Name: "hut", Owner: 0}}},
			want: "hut has no cells",
		},
		{
			name: "negative category",
			doc: Document{Boundary: []Rect{rect(0, 0, 2, 2)}, Fixed: []Fixed{
				{Cells: []grid.Cell{{X: 1, Y: 1}}, Category: -1},
			}},
			want: "fixed[0] has negative category",
		},
		{
			name: "duplicate owner",
			doc: Document{Boundary: []Rect{rect(0, 0, 2, 2)}, Fixed: []Fixed{
				{Name: "a", Cells: []grid.Cell{{X: 0, Y: 0}}, Owner: 4},
				{Name: "b", Cells: []grid.Cell{{X: 1, Y: 1}}, Owner: 4},
			}},
			want: "b reuses owner 4 of a",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.doc.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
	assert.NoError(t, Village().Validate())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"boundary":[{"min":{"x":0,"y":0},"max":{"x":1,"y":1}}],"roads":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roads")
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "village.json")
	data, err := json.Marshal(Village())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Village(), doc)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestHomeCellDefaultsToBoundaryCentre(t *testing.T) {
	doc := Document{Boundary: []Rect{rect(0, 0, 4, 6)}}
	assert.Equal(t, grid.Cell{X: 2, Y: 3}, doc.HomeCell())
}

func TestCloneIsDeep(t *testing.T) {
	doc := Village()
	clone := doc.Clone()
	clone.Fixed[0].Cells[0] = grid.Cell{X: 99, Y: 99}
	clone.Home.X = 7
	assert.Equal(t, grid.Cell{X: -4, Y: 29}, doc.Fixed[0].Cells[0])
	assert.Equal(t, 0, doc.Home.X)
}

func TestScatterZeroDensityAddsNothing(t *testing.T) {
	doc := Village()
	out := Scatter(doc, 42, 0)
	assert.Equal(t, doc.Nature, out.Nature)
}

func TestScatterIsDeterministic(t *testing.T) {
	doc := Village()
	a := Scatter(doc, 7, 0.3)
	b := Scatter(doc, 7, 0.3)
	assert.Equal(t, a.Nature, b.Nature)
	assert.Empty(t, doc.Nature, "input document untouched")
}

func TestScatterFullDensityCoversEligibleCells(t *testing.T) {
	doc := Document{
		Boundary:  []Rect{rect(0, 0, 9, 9)},
		Forbidden: []grid.Cell{{X: 9, Y: 9}},
		Corridors: []grid.Cell{{X: 0, Y: 9}},
		Fixed:     []Fixed{{Name: "hut", Cells: []grid.Cell{{X: 9, Y: 0}}, Category: 20}},
		Home:      &grid.Cell{X: 2, Y: 2},
	}
	out := Scatter(doc, 1, 1)

	// 100 cells minus the 5x5 home area and three reserved cells.
	assert.Len(t, out.Nature, 100-25-3)
	for _, c := range out.Nature {
		assert.Greater(t, c.Chebyshev(grid.Cell{X: 2, Y: 2}), homeClearance)
		assert.NotEqual(t, grid.Cell{X: 9, Y: 9}, c)
	}

	g, err := out.Build()
	require.NoError(t, err)
	assert.True(t, g.IsNature(grid.Cell{X: 5, Y: 5}))
	assert.False(t, g.IsNature(grid.Cell{X: 2, Y: 2}))
}
