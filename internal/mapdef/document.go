package mapdef

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Rushhhy/sim-game/internal/grid"
)

// ErrInvalidDocument marks documents rejected by Validate.
var ErrInvalidDocument = errors.New("invalid map document")

// Rect is an inclusive cell rectangle. Corner order does not matter.
type Rect struct {
	Min grid.Cell `json:"min" jsonschema:"title=First corner,required"`
	Max grid.Cell `json:"max" jsonschema:"title=Opposite corner,required"`
}

// Fixed is a pre-placed structure with an irregular footprint.
type Fixed struct {
	Name     string      `json:"name" jsonschema:"title=Name,description=Label used in logs and errors."`
	Cells    []grid.Cell `json:"cells" jsonschema:"title=Cells,minItems=1,required"`
	Category int         `json:"category" jsonschema:"title=Category id,minimum=0,required"`
	Owner    int         `json:"owner" jsonschema:"title=Registry index,minimum=0,required"`
}

// Document describes the static layout of a map as it appears on disk.
// Apply replays it onto a grid in field order: boundary rectangles, extra
// cells, carve-outs, removed cells, nature, forbidden cells, corridors and
// finally the fixed structures.
type Document struct {
	Name          string      `json:"name" jsonschema:"title=Map name"`
	Boundary      []Rect      `json:"boundary" jsonschema:"title=Boundary rectangles,description=Rectangles added to the buildable boundary."`
	ExtraBoundary []grid.Cell `json:"extraBoundary,omitempty" jsonschema:"title=Extra boundary cells"`
	CarveOut      []Rect      `json:"carveOut,omitempty" jsonschema:"title=Carve-outs,description=Rectangles removed from the boundary after it is built."`
	RemoveCells   []grid.Cell `json:"removeCells,omitempty" jsonschema:"title=Removed cells"`
	Nature        []grid.Cell `json:"nature,omitempty" jsonschema:"title=Nature cells,description=Trees and rocks."`
	Forbidden     []grid.Cell `json:"forbidden,omitempty" jsonschema:"title=Forbidden cells,description=Never walkable."`
	Corridors     []grid.Cell `json:"corridors,omitempty" jsonschema:"title=Corridor cells,description=Walkable even outside the boundary."`
	Fixed         []Fixed     `json:"fixed,omitempty" jsonschema:"title=Fixed structures"`
	Home          *grid.Cell  `json:"home,omitempty" jsonschema:"title=Villager home,description=Spawn point and idle wander centre."`
}

// Load reads and validates a document from disk.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read map %s: %w", path, err)
	}
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("map %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document, rejecting unknown fields, and validates it.
func Parse(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode map: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Validate checks the structural rules Apply relies on.
func (d Document) Validate() error {
	if len(d.Boundary) == 0 && len(d.ExtraBoundary) == 0 {
		return fmt.Errorf("%w: empty boundary", ErrInvalidDocument)
	}
	owners := make(map[int]string, len(d.Fixed))
	for i, fixed := range d.Fixed {
		label := fixed.Name
		if label == "" {
			label = fmt.Sprintf("fixed[%d]", i)
		}
		if len(fixed.Cells) == 0 {
			return fmt.Errorf("%w: %s has no cells", ErrInvalidDocument, label)
		}
		if fixed.Category < 0 {
			return fmt.Errorf("%w: %s has negative category %d", ErrInvalidDocument, label, fixed.Category)
		}
		if fixed.Owner < 0 {
			return fmt.Errorf("%w: %s has negative owner %d", ErrInvalidDocument, label, fixed.Owner)
		}
		if other, dup := owners[fixed.Owner]; dup {
			return fmt.Errorf("%w: %s reuses owner %d of %s", ErrInvalidDocument, label, fixed.Owner, other)
		}
		owners[fixed.Owner] = label
	}
	return nil
}

// Apply validates the document and writes it onto g. An overlapping fixed
// structure aborts with an error wrapping grid.ErrOccupiedCell.
func (d Document) Apply(g *grid.Grid) error {
	if g == nil {
		return errors.New("apply map: nil grid")
	}
	if err := d.Validate(); err != nil {
		return err
	}
	d.applyBoundary(g)
	g.MarkNature(d.Nature...)
	g.SetForbidden(d.Forbidden...)
	g.SetCorridor(d.Corridors...)
	for _, fixed := range d.Fixed {
		if _, err := g.PlaceFixed(fixed.Cells, fixed.Category, fixed.Owner); err != nil {
			return fmt.Errorf("place fixed structure %q: %w", fixed.Name, err)
		}
	}
	return nil
}

// Build applies the document to a fresh grid.
func (d Document) Build() (*grid.Grid, error) {
	g := grid.New()
	if err := d.Apply(g); err != nil {
		return nil, err
	}
	return g, nil
}

// HomeCell returns the configured home, or the centre of the boundary bounds.
func (d Document) HomeCell() grid.Cell {
	if d.Home != nil {
		return *d.Home
	}
	g := grid.New()
	d.applyBoundary(g)
	lo, hi, ok := g.Bounds()
	if !ok {
		return grid.Cell{}
	}
	return grid.Cell{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2}
}

// BoundaryCells resolves the boundary operations to the final buildable
// cell set, in row order.
func (d Document) BoundaryCells() []grid.Cell {
	g := grid.New()
	d.applyBoundary(g)
	return g.Boundary()
}

func (d Document) applyBoundary(g *grid.Grid) {
	for _, r := range d.Boundary {
		g.AddRegion(r.Min, r.Max)
	}
	g.AddCells(d.ExtraBoundary...)
	for _, r := range d.CarveOut {
		g.RemoveRegion(r.Min, r.Max)
	}
	g.RemoveCells(d.RemoveCells...)
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := d
	out.Boundary = append([]Rect(nil), d.Boundary...)
	out.ExtraBoundary = cloneCells(d.ExtraBoundary)
	out.CarveOut = append([]Rect(nil), d.CarveOut...)
	out.RemoveCells = cloneCells(d.RemoveCells)
	out.Nature = cloneCells(d.Nature)
	out.Forbidden = cloneCells(d.Forbidden)
	out.Corridors = cloneCells(d.Corridors)
	if d.Fixed != nil {
		out.Fixed = make([]Fixed, len(d.Fixed))
		for i, fixed := range d.Fixed {
			fixed.Cells = cloneCells(fixed.Cells)
			out.Fixed[i] = fixed
		}
	}
	if d.Home != nil {
		home := *d.Home
		out.Home = &home
	}
	return out
}

func cloneCells(cells []grid.Cell) []grid.Cell {
	if cells == nil {
		return nil
	}
	return append([]grid.Cell(nil), cells...)
}

