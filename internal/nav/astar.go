package nav

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/Rushhhy/sim-game/internal/grid"
)

var (
	// ErrPathNotFound is the root of every search failure.
	ErrPathNotFound = errors.New("path not found")
	// ErrGoalBlocked reports an unwalkable goal cell.
	ErrGoalBlocked = fmt.Errorf("%w: goal not walkable", ErrPathNotFound)
	// ErrBudgetExhausted reports a search stopped by SearchNodeBudget.
	ErrBudgetExhausted = fmt.Errorf("%w: node budget exhausted", ErrPathNotFound)
	// ErrUnreachable reports an exhausted open set.
	ErrUnreachable = fmt.Errorf("%w: goal unreachable", ErrPathNotFound)
)

type neighbor struct {
	dx, dy   int
	diagonal bool
}

var neighborOffsets = [...]neighbor{
	{dx: 1, dy: 0},
	{dx: -1, dy: 0},
	{dx: 0, dy: 1},
	{dx: 0, dy: -1},
	{dx: 1, dy: 1, diagonal: true},
	{dx: -1, dy: 1, diagonal: true},
	{dx: 1, dy: -1, diagonal: true},
	{dx: -1, dy: -1, diagonal: true},
}

// Plan is an immutable start-to-goal cell sequence, both ends inclusive.
type Plan struct {
	cells    []grid.Cell
	cost     float64
	expanded int
}

// Len returns the number of cells in the plan.
func (p Plan) Len() int { return len(p.cells) }

// At returns the i-th cell.
func (p Plan) At(i int) grid.Cell { return p.cells[i] }

// Cells returns a copy of the cell sequence.
func (p Plan) Cells() []grid.Cell { return append([]grid.Cell(nil), p.cells...) }

// Cost is the summed edge cost of the plan.
func (p Plan) Cost() float64 { return p.cost }

// Expanded is the number of nodes the search expanded.
func (p Plan) Expanded() int { return p.expanded }

func (p Plan) Empty() bool { return len(p.cells) == 0 }

// Start returns the first cell. The plan must not be empty.
func (p Plan) Start() grid.Cell { return p.cells[0] }

// Goal returns the last cell. The plan must not be empty.
func (p Plan) Goal() grid.Cell { return p.cells[len(p.cells)-1] }

// Index returns the first position of c in the plan, or -1.
func (p Plan) Index(c grid.Cell) int {
	for i, cell := range p.cells {
		if cell == c {
			return i
		}
	}
	return -1
}

type searchNode struct {
	cell   grid.Cell
	g      float64
	h      float64
	f      float64
	index  int
	parent *searchNode
}

type openQueue []*searchNode

func (q openQueue) Len() int { return len(q) }

func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].h < q[j].h
}

func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue) Push(x any) {
	item := x.(*searchNode)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// Heuristic estimates the remaining cost from a to b: Manhattan for
// four-way movement, octile when diagonals are allowed.
func Heuristic(a, b grid.Cell, s Settings) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	if !s.AllowDiagonal {
		return dx + dy
	}
	diagonal := math.Min(dx, dy)
	straight := math.Max(dx, dy) - diagonal
	return diagonal*s.DiagonalCost + straight
}

// canCutCorner admits a diagonal step only when both cardinal cells it
// passes between are walkable.
func canCutCorner(from grid.Cell, step neighbor, g *grid.Grid, s Settings) bool {
	horizontal := grid.Cell{X: from.X + step.dx, Y: from.Y}
	vertical := grid.Cell{X: from.X, Y: from.Y + step.dy}
	return IsWalkable(horizontal, g, s) && IsWalkable(vertical, g, s)
}

// FindPath runs A* from start to goal. The start cell itself is never
// checked so agents standing on a blocked cell can still walk off it.
func FindPath(start, goal grid.Cell, g *grid.Grid, s Settings) (Plan, error) {
	s = s.Normalized()
	if !IsWalkable(goal, g, s) {
		return Plan{}, fmt.Errorf("find path %s -> %s: %w", start, goal, ErrGoalBlocked)
	}

	open := &openQueue{}
	heap.Init(open)
	h := Heuristic(start, goal, s)
	heap.Push(open, &searchNode{cell: start, h: h, f: h})
	costSoFar := map[grid.Cell]float64{start: 0}
	closed := make(map[grid.Cell]struct{})
	expanded := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if _, seen := closed[current.cell]; seen {
			continue
		}
		expanded++
		if expanded > s.SearchNodeBudget {
			return Plan{}, fmt.Errorf("find path %s -> %s after %d nodes: %w", start, goal, s.SearchNodeBudget, ErrBudgetExhausted)
		}
		closed[current.cell] = struct{}{}
		if current.cell == goal {
			return Plan{cells: reconstruct(current), cost: current.g, expanded: expanded}, nil
		}

		for _, step := range neighborOffsets {
			if step.diagonal && (!s.AllowDiagonal || !canCutCorner(current.cell, step, g, s)) {
				continue
			}
			next := grid.Cell{X: current.cell.X + step.dx, Y: current.cell.Y + step.dy}
			if _, seen := closed[next]; seen {
				continue
			}
			if !IsWalkable(next, g, s) {
				continue
			}
			cost := 1.0
			if step.diagonal {
				cost = s.DiagonalCost
			}
			tentative := current.g + cost
			if prev, ok := costSoFar[next]; ok && tentative >= prev {
				continue
			}
			costSoFar[next] = tentative
			nh := Heuristic(next, goal, s)
			heap.Push(open, &searchNode{
				cell:   next,
				g:      tentative,
				h:      nh,
				f:      tentative + nh,
				parent: current,
			})
		}
	}
	return Plan{}, fmt.Errorf("find path %s -> %s: %w", start, goal, ErrUnreachable)
}

func reconstruct(end *searchNode) []grid.Cell {
	var path []grid.Cell
	for node := end; node != nil; node = node.parent {
		path = append(path, node.cell)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}
