package grid

import "github.com/zyedidia/generic/mapset"

// AddRegion adds the inclusive rectangle to the boundary.
func (g *Grid) AddRegion(min, max Cell) {
	g.AddCells(Rect(min, max)...)
}

// RemoveRegion removes the inclusive rectangle from the boundary.
func (g *Grid) RemoveRegion(min, max Cell) {
	g.RemoveCells(Rect(min, max)...)
}

// AddCells adds individual cells to the boundary.
func (g *Grid) AddCells(cells ...Cell) {
	if putAll(g.boundary, cells) {
		g.revision++
	}
}

// RemoveCells carves individual cells out of the boundary.
func (g *Grid) RemoveCells(cells ...Cell) {
	if removeAll(g.boundary, cells) {
		g.revision++
	}
}

// InBoundary reports whether c is part of the buildable map.
func (g *Grid) InBoundary(c Cell) bool {
	return g.boundary.Has(c)
}

// BoundarySize returns the number of buildable cells.
func (g *Grid) BoundarySize() int {
	return g.boundary.Size()
}

// Boundary lists the buildable cells in row order.
func (g *Grid) Boundary() []Cell {
	return sortedCells(g.boundary)
}

// Bounds returns the inclusive bounding box of the boundary.
func (g *Grid) Bounds() (min, max Cell, ok bool) {
	first := true
	g.boundary.Each(func(c Cell) {
		if first {
			min, max, first = c, c, false
			return
		}
		if c.X < min.X {
			min.X = c.X
		}
		if c.Y < min.Y {
			min.Y = c.Y
		}
		if c.X > max.X {
			max.X = c.X
		}
		if c.Y > max.Y {
			max.Y = c.Y
		}
	})
	return min, max, !first
}

// MarkNature flags cells as blocked by scenery.
func (g *Grid) MarkNature(cells ...Cell) {
	if putAll(g.nature, cells) {
		g.revision++
	}
}

// IsNature reports whether c is blocked by scenery.
func (g *Grid) IsNature(c Cell) bool {
	return g.nature.Has(c)
}

// Nature lists the scenery cells in row order.
func (g *Grid) Nature() []Cell {
	return sortedCells(g.nature)
}

// SetForbidden marks cells as never walkable.
func (g *Grid) SetForbidden(cells ...Cell) {
	if putAll(g.forbidden, cells) {
		g.revision++
	}
}

// IsForbidden reports whether c is never walkable.
func (g *Grid) IsForbidden(c Cell) bool {
	return g.forbidden.Has(c)
}

// Forbidden lists the forbidden cells in row order.
func (g *Grid) Forbidden() []Cell {
	return sortedCells(g.forbidden)
}

// SetCorridor marks cells as always walkable when corridors are enabled.
func (g *Grid) SetCorridor(cells ...Cell) {
	if putAll(g.corridors, cells) {
		g.revision++
	}
}

// IsCorridor reports whether c is a forced-walkable corridor cell.
func (g *Grid) IsCorridor(c Cell) bool {
	return g.corridors.Has(c)
}

// Corridors lists the corridor cells in row order.
func (g *Grid) Corridors() []Cell {
	return sortedCells(g.corridors)
}

func putAll(set mapset.Set[Cell], cells []Cell) bool {
	changed := false
	for _, c := range cells {
		if set.Has(c) {
			continue
		}
		set.Put(c)
		changed = true
	}
	return changed
}

func removeAll(set mapset.Set[Cell], cells []Cell) bool {
	changed := false
	for _, c := range cells {
		if !set.Has(c) {
			continue
		}
		set.Remove(c)
		changed = true
	}
	return changed
}
