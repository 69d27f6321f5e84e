package grid

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Kind selects the layer an entry lives on.
type Kind int

const (
	KindStructure Kind = iota
	KindDecoration
)

func (k Kind) String() string {
	switch k {
	case KindStructure:
		return "structure"
	case KindDecoration:
		return "decoration"
	default:
		return "unknown"
	}
}

const (
	// RoadCategoryMin and RoadCategoryMax bound the road variants.
	RoadCategoryMin = 0
	RoadCategoryMax = 15

	// NoCategory is reported for empty cells.
	NoCategory = -1
	// NoOwner is reported for empty cells.
	NoOwner = -1
)

// IsRoadCategory reports whether category is one of the road variants.
func IsRoadCategory(category int) bool {
	return category >= RoadCategoryMin && category <= RoadCategoryMax
}

var (
	// ErrOccupiedCell marks an attempt to place over an occupied cell.
	ErrOccupiedCell = errors.New("cell already occupied")
	// ErrEmptyFootprint marks a placement without any cells.
	ErrEmptyFootprint = errors.New("footprint has no cells")
)

// OccupiedCellError reports the first conflicting cell of a fixed placement.
type OccupiedCellError struct {
	Cell     Cell
	Category int
	Owner    int
}

func (e *OccupiedCellError) Error() string {
	return fmt.Sprintf("place fixed at %s: %v (category %d, owner %d)", e.Cell, ErrOccupiedCell, e.Category, e.Owner)
}

func (e *OccupiedCellError) Unwrap() error {
	return ErrOccupiedCell
}

// Entry is one placed object. The same pointer is stored under every cell of
// its footprint. Callers must treat Cells, Category and Kind as read-only.
type Entry struct {
	Cells    []Cell
	Category int
	Owner    int
	Kind     Kind
}

// Contains reports whether the entry covers c.
func (e *Entry) Contains(c Cell) bool {
	if e == nil {
		return false
	}
	for _, cell := range e.Cells {
		if cell == c {
			return true
		}
	}
	return false
}

// Grid is a sparse occupancy map with boundary, nature, forbidden and
// corridor overlays. It is not safe for concurrent use.
type Grid struct {
	structures  map[Cell]*Entry
	decorations map[Cell]*Entry

	boundary  mapset.Set[Cell]
	nature    mapset.Set[Cell]
	forbidden mapset.Set[Cell]
	corridors mapset.Set[Cell]

	revision uint64
}

// New constructs an empty grid with no buildable cells.
func New() *Grid {
	return &Grid{
		structures:  make(map[Cell]*Entry),
		decorations: make(map[Cell]*Entry),
		boundary:    mapset.New[Cell](),
		nature:      mapset.New[Cell](),
		forbidden:   mapset.New[Cell](),
		corridors:   mapset.New[Cell](),
	}
}

// Revision increases on every successful mutation. Observers compare it to
// detect changes without subscribing to anything.
func (g *Grid) Revision() uint64 {
	if g == nil {
		return 0
	}
	return g.revision
}

func (g *Grid) layer(kind Kind) map[Cell]*Entry {
	if kind == KindDecoration {
		return g.decorations
	}
	return g.structures
}

// CanPlace reports whether every footprint cell is inside the boundary, free
// of nature and unoccupied on both layers.
func (g *Grid) CanPlace(origin Cell, size Size) bool {
	area, ok := size.Area()
	if !ok || area > g.boundary.Size() {
		return false
	}
	for dy := 0; dy < size.H; dy++ {
		for dx := 0; dx < size.W; dx++ {
			c := Cell{X: origin.X + dx, Y: origin.Y + dy}
			if !g.boundary.Has(c) || g.nature.Has(c) || g.occupied(c) {
				return false
			}
		}
	}
	return true
}

func (g *Grid) occupied(c Cell) bool {
	if _, ok := g.structures[c]; ok {
		return true
	}
	_, ok := g.decorations[c]
	return ok
}

// Place creates an entry over the footprint at origin. Nothing changes when
// CanPlace would return false.
func (g *Grid) Place(origin Cell, size Size, category, owner int, kind Kind) (*Entry, bool) {
	if !g.CanPlace(origin, size) {
		return nil, false
	}
	entry := &Entry{
		Cells:    Footprint(origin, size),
		Category: category,
		Owner:    owner,
		Kind:     kind,
	}
	g.commit(entry)
	return entry, true
}

// PlaceFixed places a hand-authored structure over an explicit cell list.
// Boundary and nature are not consulted. Any occupied cell aborts the whole
// placement with an *OccupiedCellError.
func (g *Grid) PlaceFixed(cells []Cell, category, owner int) (*Entry, error) {
	if len(cells) == 0 {
		return nil, ErrEmptyFootprint
	}
	seen := mapset.New[Cell]()
	footprint := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if seen.Has(c) {
			continue
		}
		seen.Put(c)
		if existing := g.EntryAt(c); existing != nil {
			return nil, &OccupiedCellError{Cell: c, Category: existing.Category, Owner: existing.Owner}
		}
		footprint = append(footprint, c)
	}
	entry := &Entry{Cells: footprint, Category: category, Owner: owner, Kind: KindStructure}
	g.commit(entry)
	return entry, nil
}

func (g *Grid) commit(entry *Entry) {
	layer := g.layer(entry.Kind)
	for _, c := range entry.Cells {
		layer[c] = entry
	}
	g.revision++
}

// RemoveAt deletes whichever entry covers c, structure layer first, and
// returns it.
func (g *Grid) RemoveAt(c Cell) (*Entry, bool) {
	entry := g.EntryAt(c)
	if entry == nil {
		return nil, false
	}
	layer := g.layer(entry.Kind)
	for _, cell := range entry.Cells {
		if layer[cell] == entry {
			delete(layer, cell)
		}
	}
	g.revision++
	return entry, true
}

// EntryAt returns the entry covering c, structure layer first.
func (g *Grid) EntryAt(c Cell) *Entry {
	if g == nil {
		return nil
	}
	if entry, ok := g.structures[c]; ok {
		return entry
	}
	if entry, ok := g.decorations[c]; ok {
		return entry
	}
	return nil
}

// CategoryAt returns the category of the entry covering c, or NoCategory.
func (g *Grid) CategoryAt(c Cell) int {
	entry := g.EntryAt(c)
	if entry == nil {
		return NoCategory
	}
	return entry.Category
}

// OwnerIndexAt returns the registry index of the entry covering c, or NoOwner.
func (g *Grid) OwnerIndexAt(c Cell) int {
	entry := g.EntryAt(c)
	if entry == nil {
		return NoOwner
	}
	return entry.Owner
}

// neighborOffsets is right, left, up, down.
var neighborOffsets = [4]Cell{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// NeighborCategories reports, right/left/up/down, which neighbours hold a road.
func (g *Grid) NeighborCategories(c Cell) [4]bool {
	var roads [4]bool
	for i, offset := range neighborOffsets {
		roads[i] = IsRoadCategory(g.CategoryAt(c.Add(offset)))
	}
	return roads
}

// NeighborRoadCells lists the road neighbours of c in right/left/up/down order.
func (g *Grid) NeighborRoadCells(c Cell) []Cell {
	var cells []Cell
	for i, road := range g.NeighborCategories(c) {
		if road {
			cells = append(cells, c.Add(neighborOffsets[i]))
		}
	}
	return cells
}

// ReindexOwners shifts every owner index above removed down by one. Callers
// that drop an element from their registry use it to keep indices aligned.
func (g *Grid) ReindexOwners(removed int) int {
	touched := 0
	for _, entry := range g.Entries() {
		if entry.Owner > removed {
			entry.Owner--
			touched++
		}
	}
	if touched > 0 {
		g.revision++
	}
	return touched
}

// Entries returns every distinct entry ordered by kind, owner, then first cell.
func (g *Grid) Entries() []*Entry {
	seen := make(map[*Entry]struct{})
	var entries []*Entry
	collect := func(layer map[Cell]*Entry) {
		for _, entry := range layer {
			if _, ok := seen[entry]; ok {
				continue
			}
			seen[entry] = struct{}{}
			entries = append(entries, entry)
		}
	}
	collect(g.structures)
	collect(g.decorations)
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		return lessCell(a.Cells[0], b.Cells[0])
	})
	return entries
}

func lessCell(a, b Cell) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

func sortedCells(set mapset.Set[Cell]) []Cell {
	cells := make([]Cell, 0, set.Size())
	set.Each(func(c Cell) {
		cells = append(cells, c)
	})
	sort.Slice(cells, func(i, j int) bool { return lessCell(cells[i], cells[j]) })
	return cells
}
