// Package gridsearch provides an observable A* search over a 4-connected grid.
//
// A Controller owns the grid and its search lifecycle:
//
//   - Paint: designate walls, the start and the goal while Idle.
//   - StartSearch: run A* as a cooperative task that performs one expansion
//     per tick, suspending between ticks so it can be paused, resumed and reset.
//   - Observers: receive cell changed, explored, path cell and finished events
//     to drive a renderer.
//
// Search runs the same algorithm to completion without pacing, for callers
// that only need the result.
//
// The search state (g, h, parent) lives in a side table next to the painted
// roles, so a grid is searched again by reinitialising only that table.
package gridsearch
