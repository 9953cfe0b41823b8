package ga

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reactorai/internal/grid"
)

func uniformGrid(shape grid.Shape, v int) grid.Grid {
	g := grid.New(shape)
	for i := range g.Cells {
		g.Cells[i] = v
	}
	return g
}

func TestCrossAtRecombines(t *testing.T) {
	shape := grid.Shape{X: 3, Y: 3, Z: 3}
	a := uniformGrid(shape, 1)
	b := uniformGrid(shape, 2)

	child, err := CrossAt(a, b, 10)
	require.NoError(t, err)
	for i, v := range child.Cells {
		if i < 10 {
			assert.Equal(t, 1, v, "cell %d", i)
		} else {
			assert.Equal(t, 2, v, "cell %d", i)
		}
	}
}

func TestCrossAtBoundaryPoints(t *testing.T) {
	shape := grid.Shape{X: 2, Y: 2, Z: 2}
	a := uniformGrid(shape, 3)
	b := uniformGrid(shape, 7)

	child, err := CrossAt(a, b, 0)
	require.NoError(t, err)
	assert.True(t, child.Equal(b))

	child, err = CrossAt(a, b, shape.Cells())
	require.NoError(t, err)
	assert.True(t, child.Equal(a))
}

func TestCrossAtRejectsBadInput(t *testing.T) {
	shape := grid.Shape{X: 2, Y: 2, Z: 2}
	a := uniformGrid(shape, 1)
	b := uniformGrid(shape, 2)

	_, err := CrossAt(a, b, -1)
	assert.Error(t, err)
	_, err = CrossAt(a, b, shape.Cells()+1)
	assert.Error(t, err)
	_, err = CrossAt(a, uniformGrid(grid.Shape{X: 3, Y: 3, Z: 3}, 2), 1)
	assert.Error(t, err)
}

func TestSinglePointDrawsInteriorCut(t *testing.T) {
	shape := grid.Shape{X: 3, Y: 3, Z: 3}
	a := uniformGrid(shape, 1)
	b := uniformGrid(shape, 2)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 100; i++ {
		child, err := SinglePoint(a, b, rng)
		require.NoError(t, err)

		// The child must be a prefix of a's genes followed by a
		// suffix of b's, with both parents represented.
		cut := 0
		for cut < len(child.Cells) && child.Cells[cut] == 1 {
			cut++
		}
		assert.GreaterOrEqual(t, cut, 1)
		assert.LessOrEqual(t, cut, shape.Cells()-1)
		for _, v := range child.Cells[cut:] {
			assert.Equal(t, 2, v)
		}
	}
}

func TestSinglePointDoesNotTouchParents(t *testing.T) {
	shape := grid.Shape{X: 2, Y: 2, Z: 2}
	a := uniformGrid(shape, 1)
	b := uniformGrid(shape, 2)
	rng := rand.New(rand.NewSource(5))

	child, err := SinglePoint(a, b, rng)
	require.NoError(t, err)
	child.Cells[0] = 15

	assert.True(t, a.Equal(uniformGrid(shape, 1)))
	assert.True(t, b.Equal(uniformGrid(shape, 2)))
}
