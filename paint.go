package gridsearch

import "fmt"

// Change describes the effect of a successful paint.
type Change struct {
	Position Position
	Role     Role
	// Displaced is the previous start or goal cell that was reset to Empty
	// because this paint moved the designation.
	Displaced *Position
}

// Paint designates the cell at p as role. It returns a nil Change when the cell
// already has that role. Every paint clears the cell's stale search fields.
//
// Painting while a search is running corrupts the run; Controller.Paint
// refuses it, direct Grid callers must not do it.
func (g *Grid) Paint(p Position, role Role) (*Change, error) {
	if err := g.checkBounds(p); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	role = role.normalize()
	i := g.index(p)
	if g.roles[i] == role {
		return nil, nil
	}

	g.release(i)
	g.roles[i] = role
	change := &Change{Position: p, Role: role}

	switch role {
	case RoleStart:
		change.Displaced = g.displace(g.start)
		g.start = i
		g.state.g[i] = 0
		if g.goal != noCell {
			g.state.h[i] = g.estimate(i, g.goal)
		}
	case RoleGoal:
		change.Displaced = g.displace(g.goal)
		g.goal = i
		if g.start != noCell && g.state.h[g.start] == Unvisited {
			g.state.h[g.start] = g.estimate(g.start, i)
		}
	}
	return change, nil
}

// release clears the search fields of i and drops any endpoint designation it held.
func (g *Grid) release(i int) {
	g.state.clear(i)
	switch i {
	case g.start:
		g.start = noCell
	case g.goal:
		g.goal = noCell
	}
}

// displace resets a previous endpoint cell to Empty.
func (g *Grid) displace(i int) *Position {
	if i == noCell {
		return nil
	}
	g.release(i)
	g.roles[i] = RoleEmpty
	p := g.position(i)
	return &p
}
