package gridsearch

// Heuristic returns the estimated cost from position a to position b
type Heuristic func(from Position, to Position) float64

// Manhattan is |dx| + |dy|. It is admissible and consistent on a 4-connected
// unit-cost grid, which is what keeps closed cells final.
func Manhattan(from, to Position) float64 {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return float64(dx + dy)
}
