package gridsearch

import "fmt"

// noCell marks an absent start/goal designation or parent link.
const noCell = -1

// offsets is the fixed neighbour enumeration order: up, right, down, left.
var offsets = [4]Position{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// SearchState is the per-cell search bookkeeping, kept apart from the painted
// topology so a grid can be searched again by reinitialising only this table.
// All slices are indexed by arena index y*width+x.
type SearchState struct {
	g      []float64
	h      []float64
	parent []int
}

func newSearchState(n int) SearchState {
	s := SearchState{
		g:      make([]float64, n),
		h:      make([]float64, n),
		parent: make([]int, n),
	}
	s.reset()
	return s
}

func (s *SearchState) reset() {
	for i := range s.g {
		s.clear(i)
	}
}

func (s *SearchState) clear(i int) {
	s.g[i] = Unvisited
	s.h[i] = Unvisited
	s.parent[i] = noCell
}

// Grid is a fixed-size 4-connected grid of cells stored in a flat arena.
//
// Grid is not safe for concurrent use; Controller serialises access to the
// grid it owns.
type Grid struct {
	width, height int
	roles         []Role
	state         SearchState
	start, goal   int
	heuristic     Heuristic
}

// NewGrid creates an all-Empty grid with the given dimensions.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	g := &Grid{width: width, height: height, heuristic: Manhattan}
	g.Clear()
	return g, nil
}

// Clear discards every cell and rebuilds an all-Empty grid, dropping the
// start and goal designations.
func (g *Grid) Clear() {
	n := g.width * g.height
	g.roles = make([]Role, n)
	g.state = newSearchState(n)
	g.start, g.goal = noCell, noCell
}

// ResetSearchState reinitialises the side table, keeping painted roles. The
// start cell gets g = 0 and, when a goal exists, its heuristic estimate.
func (g *Grid) ResetSearchState() {
	g.state.reset()
	if g.start == noCell {
		return
	}
	g.state.g[g.start] = 0
	if g.goal != noCell {
		g.state.h[g.start] = g.estimate(g.start, g.goal)
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Contains reports whether p lies inside the grid.
func (g *Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

func (g *Grid) index(p Position) int { return p.Y*g.width + p.X }

func (g *Grid) position(i int) Position { return Position{X: i % g.width, Y: i / g.width} }

func (g *Grid) checkBounds(p Position) error {
	if !g.Contains(p) {
		return &OutOfBoundsError{Position: p, Width: g.width, Height: g.height}
	}
	return nil
}

// Cell returns a copy of the cell at p.
func (g *Grid) Cell(p Position) (Cell, error) {
	if err := g.checkBounds(p); err != nil {
		return Cell{}, err
	}
	return g.cellAt(g.index(p)), nil
}

func (g *Grid) cellAt(i int) Cell {
	c := Cell{
		Position: g.position(i),
		Role:     g.roles[i],
		G:        g.state.g[i],
		H:        g.state.h[i],
	}
	if parent := g.state.parent[i]; parent != noCell {
		pp := g.position(parent)
		c.Parent = &pp
	}
	return c
}

// Role returns the role at p.
func (g *Grid) Role(p Position) (Role, error) {
	if err := g.checkBounds(p); err != nil {
		return RoleEmpty, err
	}
	return g.roles[g.index(p)], nil
}

// Start returns the current start cell, if any.
func (g *Grid) Start() (Position, bool) {
	if g.start == noCell {
		return Position{}, false
	}
	return g.position(g.start), true
}

// Goal returns the current goal cell, if any.
func (g *Grid) Goal() (Position, bool) {
	if g.goal == noCell {
		return Position{}, false
	}
	return g.position(g.goal), true
}

// Neighbors returns the in-bounds, non-wall orthogonal neighbours of p in
// up, right, down, left order.
func (g *Grid) Neighbors(p Position) []Position {
	if !g.Contains(p) {
		return nil
	}
	idx := g.neighbors(g.index(p), make([]int, 0, len(offsets)))
	out := make([]Position, len(idx))
	for i, n := range idx {
		out[i] = g.position(n)
	}
	return out
}

func (g *Grid) neighbors(i int, buf []int) []int {
	p := g.position(i)
	for _, d := range offsets {
		np := Position{X: p.X + d.X, Y: p.Y + d.Y}
		if !g.Contains(np) {
			continue
		}
		ni := g.index(np)
		if g.roles[ni] == RoleWall {
			continue
		}
		buf = append(buf, ni)
	}
	return buf
}

func (g *Grid) estimate(from, to int) float64 {
	return g.heuristic(g.position(from), g.position(to))
}

// Roles returns a row-major copy of every cell's role.
func (g *Grid) Roles() []Role {
	out := make([]Role, len(g.roles))
	copy(out, g.roles)
	return out
}
