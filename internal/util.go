package internal

// WalkParents follows parent links from current until a cell with no parent
// (a negative link) and returns the visited cells in that order, current
// first. The walk gives up after len(parent) hops so a corrupted table cannot
// loop forever.
func WalkParents(parent []int, current int) []int {
	if current < 0 {
		return nil
	}
	chain := []int{current}
	for hops := 0; hops < len(parent); hops++ {
		previous := parent[current]
		if previous < 0 {
			break
		}
		chain = append(chain, previous)
		current = previous
	}
	return chain
}
