// Package eval scores reactor layouts against the simulation oracle,
// caching results by grid contents so structurally identical
// individuals are only simulated once.
package eval

import (
	"math"
	"runtime"
	"sync"

	"reactorai/internal/grid"
	"reactorai/internal/sim"
)

// Fitness weights, kept as named constants because they are tuned
// empirically rather than derived.
const (
	weightEnergy     = 0.9
	weightHeat       = 0.3
	weightEfficiency = 1.5
	weightSymmetry   = 2.0
	weightDiversity  = 5.0
	overheatPenalty  = 100.0
)

// Evaluator computes composite fitness scores for grids.
type Evaluator struct {
	oracle  sim.Oracle
	cache   *Cache
	fuel    string
	workers int
}

// NewEvaluator wraps an oracle with a fresh cache. workers bounds the
// parallelism of EvaluatePopulation; zero or negative means one
// worker per CPU.
func NewEvaluator(oracle sim.Oracle, fuel string, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Evaluator{
		oracle:  oracle,
		cache:   NewCache(),
		fuel:    fuel,
		workers: workers,
	}
}

// Evaluate scores a single grid. Invalid grids score 0 regardless of
// their metrics; valid grids get the weighted composite of oracle
// metrics, symmetry reward and diversity penalty. Results are cached
// by grid contents. An oracle error is fatal and is not cached.
func (e *Evaluator) Evaluate(g grid.Grid) (float64, error) {
	key := g.Key()
	if score, ok := e.cache.Get(key); ok {
		return score, nil
	}

	metrics, err := e.oracle.Metrics(g, e.fuel)
	if err != nil {
		return 0, err
	}

	// Validity is judged independently of the metrics outcome: an
	// invalid layout scores 0 no matter how well it simulates.
	if !e.oracle.Valid(g) {
		return e.cache.PutIfAbsent(key, 0), nil
	}

	score := weightEnergy*metrics.EnergyGen +
		weightHeat*metrics.HeatGen +
		heatPenalty(metrics.HeatDiff) +
		weightEfficiency*(metrics.Efficiency/100) +
		weightSymmetry*symmetryReward(g) -
		weightDiversity*diversityPenalty(g)

	return e.cache.PutIfAbsent(key, score), nil
}

// EvaluatePopulation scores every individual on a bounded worker
// pool. The returned vector is positionally aligned with pop no
// matter the completion order. The first oracle error aborts the
// result.
func (e *Evaluator) EvaluatePopulation(pop []grid.Grid) ([]float64, error) {
	fits := make([]float64, len(pop))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)
	var mu sync.Mutex
	var firstErr error

	for i := range pop {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			score, err := e.Evaluate(pop[i])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			fits[i] = score
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return fits, nil
}

// CacheLen reports how many distinct grids have been scored so far.
func (e *Evaluator) CacheLen() int {
	return e.cache.Len()
}

// heatPenalty punishes net overheating hard and rewards headroom
// mildly: -100 per unit of positive heat diff, else the magnitude of
// the (non-positive) diff.
func heatPenalty(heatDiff float64) float64 {
	if heatDiff > 0 {
		return -overheatPenalty * heatDiff
	}
	return -heatDiff
}

// symmetryReward sums exp(-L1(g, flip(g, axis))) over the three
// axes; a perfect mirror along an axis contributes 1.0.
func symmetryReward(g grid.Grid) float64 {
	reward := 0.0
	for axis := 0; axis < 3; axis++ {
		reward += math.Exp(-float64(grid.L1Distance(g, g.Flip(axis))))
	}
	return reward
}

// diversityPenalty is the fraction of cells wasted on repeated
// values: 0 when every cell is distinct, near 1 when one value fills
// the lattice.
func diversityPenalty(g grid.Grid) float64 {
	cells := g.Shape.Cells()
	return float64(cells-g.DistinctValues()) / float64(cells)
}
