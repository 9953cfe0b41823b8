package grid

import (
	"fmt"
	"math/rand"
)

// Cell code bounds. Codes are opaque to the optimizer; the simulator
// decides what they mean.
const (
	CodeMin = 0
	CodeMax = 17

	// Mutation draws exclude the empty code and the top code so a
	// mutated cell is always a meaningful component.
	MutationMin = 1
	MutationMax = 16
)

// Shape is the fixed size of a lattice along each axis.
type Shape struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// DefaultShape matches the stock 3x3x3 reactor lattice.
var DefaultShape = Shape{X: 3, Y: 3, Z: 3}

// Cells returns the number of cells in a lattice of this shape.
func (s Shape) Cells() int {
	return s.X * s.Y * s.Z
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.X, s.Y, s.Z)
}

// Grid is a fixed-shape 3D lattice of cell codes stored flat in
// row-major order (x outermost, z innermost). Grids are value types:
// anything that modifies cells must work on its own copy via Clone.
type Grid struct {
	Shape Shape
	Cells []int
}

// New returns an all-zero grid of the given shape.
func New(shape Shape) Grid {
	return Grid{Shape: shape, Cells: make([]int, shape.Cells())}
}

// FromFlat builds a grid from a flat row-major cell sequence.
func FromFlat(shape Shape, cells []int) (Grid, error) {
	if len(cells) != shape.Cells() {
		return Grid{}, fmt.Errorf("grid: %d cells do not fill shape %s", len(cells), shape)
	}
	g := New(shape)
	copy(g.Cells, cells)
	return g, nil
}

// Random returns a grid with every cell drawn uniformly from
// [lo, hi] inclusive.
func Random(shape Shape, lo, hi int, rng *rand.Rand) Grid {
	g := New(shape)
	for i := range g.Cells {
		g.Cells[i] = lo + rng.Intn(hi-lo+1)
	}
	return g
}

// RandomShape samples a small lattice size, 3 or 4 along each axis.
func RandomShape(rng *rand.Rand) Shape {
	return Shape{
		X: 3 + rng.Intn(2),
		Y: 3 + rng.Intn(2),
		Z: 3 + rng.Intn(2),
	}
}

// Clone returns a deep copy that shares no cells with g.
func (g Grid) Clone() Grid {
	c := Grid{Shape: g.Shape, Cells: make([]int, len(g.Cells))}
	copy(c.Cells, g.Cells)
	return c
}

// At returns the cell code at (x, y, z).
func (g Grid) At(x, y, z int) int {
	return g.Cells[g.index(x, y, z)]
}

func (g Grid) index(x, y, z int) int {
	return (x*g.Shape.Y+y)*g.Shape.Z + z
}

// Key is the canonical cache identity: the flat cell sequence packed
// one byte per cell. Two grids with equal contents share a key.
func (g Grid) Key() string {
	b := make([]byte, len(g.Cells))
	for i, v := range g.Cells {
		b[i] = byte(v)
	}
	return string(b)
}

// Equal reports whether two grids have the same shape and contents.
func (g Grid) Equal(o Grid) bool {
	if g.Shape != o.Shape || len(g.Cells) != len(o.Cells) {
		return false
	}
	for i, v := range g.Cells {
		if o.Cells[i] != v {
			return false
		}
	}
	return true
}

// Flip returns a copy mirrored along the given axis (0=x, 1=y, 2=z).
func (g Grid) Flip(axis int) Grid {
	f := New(g.Shape)
	for x := 0; x < g.Shape.X; x++ {
		for y := 0; y < g.Shape.Y; y++ {
			for z := 0; z < g.Shape.Z; z++ {
				fx, fy, fz := x, y, z
				switch axis {
				case 0:
					fx = g.Shape.X - 1 - x
				case 1:
					fy = g.Shape.Y - 1 - y
				case 2:
					fz = g.Shape.Z - 1 - z
				}
				f.Cells[f.index(fx, fy, fz)] = g.Cells[g.index(x, y, z)]
			}
		}
	}
	return f
}

// L1Distance sums the absolute cell-wise differences of two grids of
// equal shape.
func L1Distance(a, b Grid) int {
	sum := 0
	for i, v := range a.Cells {
		d := v - b.Cells[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// DistinctValues counts the distinct cell codes present in g.
func (g Grid) DistinctValues() int {
	seen := make(map[int]struct{}, len(g.Cells))
	for _, v := range g.Cells {
		seen[v] = struct{}{}
	}
	return len(seen)
}
