package ga

import (
	"fmt"
	"math/rand"

	"reactorai/internal/grid"
)

// Tournament draws k distinct individuals uniformly at random and
// returns the one with the highest fitness. Ties go to the lowest
// population index, so the result is deterministic given the draw.
func Tournament(pop []grid.Grid, fits []float64, k int, rng *rand.Rand) (grid.Grid, error) {
	if len(fits) != len(pop) {
		return grid.Grid{}, fmt.Errorf("ga: fitness vector has %d entries for %d individuals", len(fits), len(pop))
	}
	if k < 1 || k > len(pop) {
		return grid.Grid{}, fmt.Errorf("ga: tournament size %d out of range for population %d", k, len(pop))
	}

	drawn := rng.Perm(len(pop))[:k]
	best := drawn[0]
	for _, i := range drawn[1:] {
		if fits[i] > fits[best] || (fits[i] == fits[best] && i < best) {
			best = i
		}
	}
	return pop[best], nil
}
