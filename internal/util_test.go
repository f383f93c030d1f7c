package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalkParents(t *testing.T) {
	// 3 -> 1 -> 0
	parent := []int{-1, 0, -1, 1}
	assert.Equal(t, []int{3, 1, 0}, WalkParents(parent, 3))
	assert.Equal(t, []int{2}, WalkParents(parent, 2))
	assert.Nil(t, WalkParents(parent, -1))
}

func TestWalkParents_Cycle(t *testing.T) {
	parent := []int{1, 0}
	assert.Len(t, WalkParents(parent, 0), 3)
}
