package ga

import (
	"sort"

	"reactorai/internal/grid"
)

// NewZeroPopulation builds the initial population: n independent
// all-zero grids of the given shape.
func NewZeroPopulation(n int, shape grid.Shape) []grid.Grid {
	pop := make([]grid.Grid, n)
	for i := range pop {
		pop[i] = grid.New(shape)
	}
	return pop
}

// EliteIndices returns the indices of the n highest-fitness
// individuals, best first. Equal fitnesses rank by lower index, so
// the result is deterministic.
func EliteIndices(fits []float64, n int) []int {
	if n > len(fits) {
		n = len(fits)
	}
	idx := make([]int, len(fits))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return fits[idx[a]] > fits[idx[b]]
	})
	return idx[:n]
}

// BestIndex returns the index of the maximum fitness, ties broken by
// first occurrence.
func BestIndex(fits []float64) int {
	best := 0
	for i, f := range fits {
		if f > fits[best] {
			best = i
		}
	}
	return best
}
