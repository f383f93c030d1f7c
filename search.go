package gridsearch

import (
	"context"
	"fmt"
	"slices"

	"github.com/pdrpinto/gridsearch/internal"
)

// Outcome is how a search ended.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomePathFound
	OutcomePathNotFound
)

var outcomeNames = [...]string{
	OutcomeNone:         "none",
	OutcomePathFound:    "path_found",
	OutcomePathNotFound: "path_not_found",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", o)
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// StepResult is what one search iteration did.
type StepResult struct {
	Current Position
	// Explored is set when Current was closed and should be shown as explored.
	// It is false for the start cell.
	Explored bool
	Outcome  Outcome
	// Path is the start..goal chain once Outcome is OutcomePathFound.
	Path []Position
}

// run is the transient state of one A* search over a grid.
type run struct {
	grid     *Grid
	frontier Frontier
	closed   []bool
	current  int
	expanded int
	outcome  Outcome
	path     []Position
	buf      []int
}

// newRun reinitialises the grid's search state and seeds the frontier with the
// start cell. The grid must have both endpoints.
func newRun(grid *Grid, factory FrontierFactory) *run {
	grid.ResetSearchState()
	r := &run{
		grid:    grid,
		closed:  make([]bool, len(grid.roles)),
		current: noCell,
		buf:     make([]int, 0, len(offsets)),
	}
	state := &grid.state
	r.frontier = factory(func(i int) float64 { return state.g[i] + state.h[i] })
	r.frontier.Insert(grid.start)
	return r
}

// Step advances the search by one node expansion.
func (r *run) Step() (StepResult, error) {
	if r.outcome != OutcomeNone {
		return StepResult{Outcome: r.outcome, Path: r.path}, nil
	}

	grid := r.grid
	current, err := r.frontier.PopMin()
	if err != nil {
		return StepResult{}, err
	}
	r.current = current
	result := StepResult{Current: grid.position(current)}

	// Goal check
	if current == grid.goal {
		chain := internal.WalkParents(grid.state.parent, current)
		slices.Reverse(chain)
		r.path = make([]Position, len(chain))
		for k, i := range chain {
			r.path[k] = grid.position(i)
		}
		r.outcome = OutcomePathFound
		result.Outcome = r.outcome
		result.Path = r.path
		return result, nil
	}

	r.closed[current] = true
	r.expanded++
	result.Explored = current != grid.start

	state := &grid.state
	for _, neighbor := range grid.neighbors(current, r.buf[:0]) {
		if r.closed[neighbor] {
			continue
		}
		tentativeG := state.g[current] + 1
		inOpen := r.frontier.Contains(neighbor)
		if inOpen && tentativeG >= state.g[neighbor] {
			continue
		}
		state.parent[neighbor] = current
		state.g[neighbor] = tentativeG
		state.h[neighbor] = grid.estimate(neighbor, grid.goal)
		if inOpen {
			r.frontier.Update(neighbor)
		} else {
			r.frontier.Insert(neighbor)
		}
	}

	if r.frontier.Len() == 0 {
		r.outcome = OutcomePathNotFound
		result.Outcome = r.outcome
	}
	return result, nil
}

func (r *run) done() bool { return r.outcome != OutcomeNone }

// Result summarises a search run to completion.
type Result struct {
	Outcome Outcome
	// Path is the start..goal chain when Outcome is OutcomePathFound.
	Path []Position
	// Explored lists closed cells in closing order, start excluded.
	Explored []Position
}

// Search runs A* over g to completion with no pacing and no events. ctx is
// checked between iterations. A nil factory selects the linear frontier.
func Search(ctx context.Context, g *Grid, factory FrontierFactory) (Result, error) {
	if g.start == noCell || g.goal == noCell {
		return Result{}, ErrMissingEndpoints
	}
	if factory == nil {
		factory = NewLinearFrontier
	}

	r := newRun(g, factory)
	var result Result
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		step, err := r.Step()
		if err != nil {
			return result, err
		}
		if step.Explored {
			result.Explored = append(result.Explored, step.Current)
		}
		if step.Outcome != OutcomeNone {
			result.Outcome = step.Outcome
			result.Path = step.Path
			return result, nil
		}
	}
}
