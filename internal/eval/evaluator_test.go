package eval

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reactorai/internal/grid"
	"reactorai/internal/sim"
)

// stubOracle is a call-counting oracle with pluggable behavior.
type stubOracle struct {
	mu           sync.Mutex
	metricsCalls int
	metricsFn    func(g grid.Grid) (sim.Metrics, error)
	validFn      func(g grid.Grid) bool
}

func (s *stubOracle) Metrics(g grid.Grid, fuel string) (sim.Metrics, error) {
	s.mu.Lock()
	s.metricsCalls++
	s.mu.Unlock()
	if s.metricsFn != nil {
		return s.metricsFn(g)
	}
	return sim.Metrics{}, nil
}

func (s *stubOracle) Valid(g grid.Grid) bool {
	if s.validFn != nil {
		return s.validFn(g)
	}
	return true
}

func (s *stubOracle) Normalize(g grid.Grid) (grid.Grid, error) {
	if !s.Valid(g) {
		return grid.Grid{}, errors.New("stub: invalid")
	}
	return g, nil
}

func (s *stubOracle) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metricsCalls
}

func TestEvaluateCachesByContents(t *testing.T) {
	oracle := &stubOracle{}
	e := NewEvaluator(oracle, "TBU", 1)
	g := grid.New(grid.Shape{X: 3, Y: 3, Z: 3})

	first, err := e.Evaluate(g)
	require.NoError(t, err)
	second, err := e.Evaluate(g.Clone())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, oracle.calls(), "second call must not re-invoke the simulator")
	assert.Equal(t, 1, e.CacheLen())
}

func TestEvaluateInvalidScoresZero(t *testing.T) {
	oracle := &stubOracle{
		metricsFn: func(grid.Grid) (sim.Metrics, error) {
			return sim.Metrics{EnergyGen: 1e6, HeatGen: 1e6, Efficiency: 100}, nil
		},
		validFn: func(grid.Grid) bool { return false },
	}
	e := NewEvaluator(oracle, "TBU", 1)

	score, err := e.Evaluate(grid.New(grid.Shape{X: 3, Y: 3, Z: 3}))
	require.NoError(t, err)
	assert.Zero(t, score, "invalid grids score 0 regardless of metrics")
}

func TestEvaluateCompositeScore(t *testing.T) {
	oracle := &stubOracle{
		metricsFn: func(grid.Grid) (sim.Metrics, error) {
			return sim.Metrics{EnergyGen: 100, HeatGen: 10, HeatDiff: -2, Efficiency: 50}, nil
		},
	}
	e := NewEvaluator(oracle, "TBU", 1)

	// All-zero 3x3x3: perfect mirror symmetry on every axis (reward
	// 3), one distinct value (penalty 26/27).
	score, err := e.Evaluate(grid.New(grid.Shape{X: 3, Y: 3, Z: 3}))
	require.NoError(t, err)

	want := 0.9*100 + 0.3*10 + 2.0 + 1.5*(50.0/100) + 2.0*3 - 5.0*(26.0/27)
	assert.InDelta(t, want, score, 1e-9)
}

func TestEvaluateOverheatPenalty(t *testing.T) {
	for _, tc := range []struct {
		heatDiff float64
		penalty  float64
	}{
		{heatDiff: 3, penalty: -300},
		{heatDiff: 0, penalty: 0},
		{heatDiff: -4, penalty: 4},
	} {
		assert.InDelta(t, tc.penalty, heatPenalty(tc.heatDiff), 1e-9, "heatDiff=%v", tc.heatDiff)
	}
}

func TestSymmetryRewardBounds(t *testing.T) {
	g := grid.New(grid.Shape{X: 3, Y: 3, Z: 3})
	assert.InDelta(t, 3.0, symmetryReward(g), 1e-9)

	// A corner change breaks the mirror along every axis; the reward
	// drops but each axis still contributes a positive term.
	g.Cells[0] = 1
	r := symmetryReward(g)
	assert.Less(t, r, 3.0)
	assert.Greater(t, r, 0.0)
}

func TestDiversityPenalty(t *testing.T) {
	shape := grid.Shape{X: 1, Y: 2, Z: 2}
	all := grid.New(shape)
	assert.InDelta(t, 3.0/4, diversityPenalty(all), 1e-9)

	distinct, err := grid.FromFlat(shape, []int{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Zero(t, diversityPenalty(distinct))
}

func TestEvaluatePopulationPreservesOrder(t *testing.T) {
	oracle := &stubOracle{
		metricsFn: func(g grid.Grid) (sim.Metrics, error) {
			sum := 0.0
			for _, v := range g.Cells {
				sum += float64(v)
			}
			return sim.Metrics{EnergyGen: sum}, nil
		},
	}
	e := NewEvaluator(oracle, "TBU", 4)

	shape := grid.Shape{X: 1, Y: 1, Z: 2}
	pop := make([]grid.Grid, 16)
	for i := range pop {
		g := grid.New(shape)
		g.Cells[0] = i % (grid.CodeMax + 1)
		g.Cells[1] = i % (grid.CodeMax + 1)
		pop[i] = g
	}

	fits, err := e.EvaluatePopulation(pop)
	require.NoError(t, err)
	require.Len(t, fits, len(pop))

	for i, g := range pop {
		single, err := e.Evaluate(g)
		require.NoError(t, err)
		assert.Equal(t, single, fits[i], "index %d", i)
	}
}

func TestEvaluatePropagatesOracleFailure(t *testing.T) {
	oracle := &stubOracle{
		metricsFn: func(grid.Grid) (sim.Metrics, error) {
			return sim.Metrics{}, fmt.Errorf("simulator down")
		},
	}
	e := NewEvaluator(oracle, "TBU", 2)

	_, err := e.Evaluate(grid.New(grid.Shape{X: 2, Y: 2, Z: 2}))
	assert.Error(t, err)

	_, err = e.EvaluatePopulation([]grid.Grid{grid.New(grid.Shape{X: 2, Y: 2, Z: 2})})
	assert.Error(t, err)
}

func TestCacheFirstWriteWins(t *testing.T) {
	c := NewCache()
	assert.Equal(t, 1.5, c.PutIfAbsent("k", 1.5))
	assert.Equal(t, 1.5, c.PutIfAbsent("k", 9.9))

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1.5, got)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheConcurrentInserts(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j)
				got := c.PutIfAbsent(key, float64(j))
				if got != float64(j) {
					t.Errorf("key %s: got %v", key, got)
				}
				if _, ok := c.Get(key); !ok {
					t.Errorf("key %s missing after insert", key)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, c.Len())
}
