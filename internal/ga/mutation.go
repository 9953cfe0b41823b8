package ga

import (
	"math/rand"

	"reactorai/internal/grid"
)

// Mutate returns a copy of g where each cell is independently
// replaced, with the given probability, by a uniform draw from the
// mutation alphabet [MutationMin, MutationMax]. The input grid is
// never modified.
func Mutate(g grid.Grid, rate float64, rng *rand.Rand) grid.Grid {
	out := g.Clone()
	for i := range out.Cells {
		if rng.Float64() < rate {
			out.Cells[i] = grid.MutationMin + rng.Intn(grid.MutationMax-grid.MutationMin+1)
		}
	}
	return out
}
