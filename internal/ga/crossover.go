package ga

import (
	"fmt"
	"math/rand"

	"reactorai/internal/grid"
)

// CrossAt recombines two parents at a fixed cut point p: the child's
// flat sequence is a's prefix of length p followed by b's suffix.
// p = 0 reproduces b, p = Cells() reproduces a.
func CrossAt(a, b grid.Grid, p int) (grid.Grid, error) {
	if a.Shape != b.Shape {
		return grid.Grid{}, fmt.Errorf("ga: cannot cross shapes %s and %s", a.Shape, b.Shape)
	}
	cells := a.Shape.Cells()
	if p < 0 || p > cells {
		return grid.Grid{}, fmt.Errorf("ga: cut point %d out of range [0,%d]", p, cells)
	}

	child := grid.New(a.Shape)
	copy(child.Cells[:p], a.Cells[:p])
	copy(child.Cells[p:], b.Cells[p:])
	return child, nil
}

// SinglePoint recombines two parents at a cut point drawn uniformly
// from [1, cells-1], so every child carries genes from both.
func SinglePoint(a, b grid.Grid, rng *rand.Rand) (grid.Grid, error) {
	cells := a.Shape.Cells()
	if cells < 2 {
		return grid.Grid{}, fmt.Errorf("ga: cannot cross a %d-cell grid", cells)
	}
	return CrossAt(a, b, 1+rng.Intn(cells-1))
}
