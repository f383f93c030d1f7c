package gridsearch

import (
	"cmp"
	"container/heap"
	"slices"
)

// Frontier is the open set: cells discovered but not yet finalized.
//
// PopMin yields the member with the lowest score. Among equal scores the member
// encountered first in the frontier's enumeration order wins, and that order is
// insertion order: removing a member does not reorder the rest, and Update
// (after a score decrease) does not move a member.
type Frontier interface {
	Insert(i int)
	Remove(i int)
	Contains(i int) bool
	// Update must be called after the score of member i decreased.
	Update(i int)
	PopMin() (int, error)
	Len() int
	// Items lists the members in enumeration order.
	Items() []int
}

// FrontierFactory builds an empty frontier reading scores through score.
type FrontierFactory func(score func(i int) float64) Frontier

// LinearFrontier scans its members on every pop. O(n) per pop, which is fine at
// viewport-sized grids.
type LinearFrontier struct {
	score   func(int) float64
	members []int
	in      map[int]bool
}

// NewLinearFrontier is the default FrontierFactory.
func NewLinearFrontier(score func(i int) float64) Frontier {
	return &LinearFrontier{score: score, in: make(map[int]bool)}
}

func (f *LinearFrontier) Insert(i int) {
	if f.in[i] {
		return
	}
	f.in[i] = true
	f.members = append(f.members, i)
}

func (f *LinearFrontier) Remove(i int) {
	if !f.in[i] {
		return
	}
	delete(f.in, i)
	for k, m := range f.members {
		if m == i {
			f.members = append(f.members[:k], f.members[k+1:]...)
			return
		}
	}
}

func (f *LinearFrontier) Contains(i int) bool { return f.in[i] }

func (f *LinearFrontier) Update(int) {}

func (f *LinearFrontier) PopMin() (int, error) {
	if len(f.members) == 0 {
		return noCell, ErrEmptyFrontier
	}
	best := 0
	bestScore := f.score(f.members[0])
	for k := 1; k < len(f.members); k++ {
		// strict less keeps the first encountered on ties
		if s := f.score(f.members[k]); s < bestScore {
			best, bestScore = k, s
		}
	}
	i := f.members[best]
	f.members = append(f.members[:best], f.members[best+1:]...)
	delete(f.in, i)
	return i, nil
}

func (f *LinearFrontier) Len() int { return len(f.members) }

func (f *LinearFrontier) Items() []int {
	out := make([]int, len(f.members))
	copy(out, f.members)
	return out
}

// PriorityQueueItem is one HeapFrontier member.
type PriorityQueueItem struct {
	Cell         int
	FCost        float64
	Sequence     uint64
	IndexInQueue int
}

// PriorityQueue orders items by FCost, then by insertion Sequence.
type PriorityQueue []*PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	if queue[i].FCost != queue[j].FCost {
		return queue[i].FCost < queue[j].FCost
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue PriorityQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue) Push(x any) {
	item := x.(*PriorityQueueItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}

// HeapFrontier is a binary-heap frontier. Breaking ties on insertion sequence
// gives the same pop order as LinearFrontier.
type HeapFrontier struct {
	score    func(int) float64
	queue    PriorityQueue
	items    map[int]*PriorityQueueItem
	sequence uint64
}

// NewHeapFrontier is a FrontierFactory producing a HeapFrontier.
func NewHeapFrontier(score func(i int) float64) Frontier {
	f := &HeapFrontier{score: score, items: make(map[int]*PriorityQueueItem)}
	heap.Init(&f.queue)
	return f
}

func (f *HeapFrontier) Insert(i int) {
	if _, ok := f.items[i]; ok {
		return
	}
	f.sequence++
	item := &PriorityQueueItem{Cell: i, FCost: f.score(i), Sequence: f.sequence}
	heap.Push(&f.queue, item)
	f.items[i] = item
}

func (f *HeapFrontier) Remove(i int) {
	item, ok := f.items[i]
	if !ok {
		return
	}
	heap.Remove(&f.queue, item.IndexInQueue)
	delete(f.items, i)
}

func (f *HeapFrontier) Contains(i int) bool {
	_, ok := f.items[i]
	return ok
}

func (f *HeapFrontier) Update(i int) {
	item, ok := f.items[i]
	if !ok {
		return
	}
	item.FCost = f.score(i)
	heap.Fix(&f.queue, item.IndexInQueue)
}

func (f *HeapFrontier) PopMin() (int, error) {
	if f.queue.Len() == 0 {
		return noCell, ErrEmptyFrontier
	}
	item := heap.Pop(&f.queue).(*PriorityQueueItem)
	delete(f.items, item.Cell)
	return item.Cell, nil
}

func (f *HeapFrontier) Len() int { return f.queue.Len() }

func (f *HeapFrontier) Items() []int {
	ordered := make([]*PriorityQueueItem, len(f.queue))
	copy(ordered, f.queue)
	slices.SortFunc(ordered, func(a, b *PriorityQueueItem) int {
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	out := make([]int, len(ordered))
	for k, item := range ordered {
		out[k] = item.Cell
	}
	return out
}
