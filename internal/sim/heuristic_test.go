package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reactorai/internal/grid"
)

// referenceCells mirrors the hand-designed benchmark lattice:
// moderator column core wrapped in fuel and coolers.
var referenceCells = []int{
	12, 1, 12, 12, 1, 12, 12, 1, 12,
	1, 2, 1, 1, 2, 1, 1, 2, 1,
	12, 1, 12, 12, 1, 12, 12, 1, 12,
}

func referenceGrid(t *testing.T) grid.Grid {
	t.Helper()
	g, err := grid.FromFlat(grid.DefaultShape, referenceCells)
	require.NoError(t, err)
	return g
}

func TestEmptyLatticeIsInvalid(t *testing.T) {
	h := NewHeuristic()
	g := grid.New(grid.DefaultShape)

	assert.False(t, h.Valid(g))
	_, err := h.Normalize(g)
	assert.Error(t, err)
}

func TestReferenceLattice(t *testing.T) {
	h := NewHeuristic()
	g := referenceGrid(t)

	assert.True(t, h.Valid(g))

	m, err := h.Metrics(g, "TBU")
	require.NoError(t, err)
	assert.Greater(t, m.EnergyGen, 0.0)
	assert.Greater(t, m.HeatGen, 0.0)
	assert.Greater(t, m.Efficiency, 100.0, "moderated fuel runs above base efficiency")

	again, err := h.Metrics(g, "TBU")
	require.NoError(t, err)
	assert.Equal(t, m, again, "metrics must be deterministic")
}

func TestFuelMultipliersScaleMetrics(t *testing.T) {
	h := NewHeuristic()
	g := referenceGrid(t)

	tbu, err := h.Metrics(g, "TBU")
	require.NoError(t, err)
	heu, err := h.Metrics(g, "HEU-235")
	require.NoError(t, err)

	assert.Greater(t, heu.EnergyGen, tbu.EnergyGen)
	assert.Greater(t, heu.HeatGen, tbu.HeatGen)
}

func TestUnknownFuelFails(t *testing.T) {
	h := NewHeuristic()
	_, err := h.Metrics(referenceGrid(t), "plutonium-sandwich")
	assert.Error(t, err)
}

func TestInertCoolerInvalidatesAndNormalizes(t *testing.T) {
	h := NewHeuristic()

	g := grid.New(grid.DefaultShape)
	g.Cells[0] = codeFuelCell
	// A cooler in the far corner touches neither fuel nor moderator.
	far := g.Shape.Cells() - 1
	g.Cells[far] = coolerMin

	assert.False(t, h.Valid(g))

	repaired, err := h.Normalize(g)
	require.NoError(t, err)
	assert.Equal(t, codeAir, repaired.Cells[far])
	assert.True(t, h.Valid(repaired))

	// Normalize works on a copy.
	assert.Equal(t, coolerMin, g.Cells[far])
}

func TestCoolerRateTableCoversAlphabet(t *testing.T) {
	assert.Len(t, coolerRate, coolerMax-coolerMin+1)
}
