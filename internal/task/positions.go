package task

import (
	"fmt"
	"sort"
)

// Source is the random source used to place loss cards. *math/rand.Rand
// satisfies it.
type Source interface {
	Intn(n int) int
}

// PositionSet is a set of card indices.
type PositionSet map[int]struct{}

// Contains reports whether card is in the set.
func (s PositionSet) Contains(card int) bool {
	_, ok := s[card]
	return ok
}

// Sorted returns the positions in ascending order.
func (s PositionSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// LossPositions picks lossCards distinct indices in [0, numCards) by
// rejection sampling. Panics unless 0 <= lossCards < numCards, since the
// sampling loop could never finish otherwise.
func LossPositions(src Source, numCards, lossCards int) PositionSet {
	if lossCards < 0 || lossCards >= numCards {
		panic(fmt.Sprintf("task: loss cards (%d) must be in [0, %d)", lossCards, numCards))
	}
	set := make(PositionSet, lossCards)
	for len(set) < lossCards {
		set[src.Intn(numCards)] = struct{}{}
	}
	return set
}
