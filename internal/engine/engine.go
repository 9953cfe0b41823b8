// Package engine runs the generational search loop: parallel fitness
// evaluation, elitism, tournament breeding, and adaptive decay of the
// mutation rate and tournament size.
package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	"reactorai/internal/config"
	"reactorai/internal/eval"
	"reactorai/internal/ga"
	"reactorai/internal/grid"
	"reactorai/internal/sim"
)

// GenerationStats is the per-generation summary handed to observers.
type GenerationStats struct {
	Generation     int     `json:"generation"`
	BestFitness    float64 `json:"best_fitness"`
	MeanFitness    float64 `json:"mean_fitness"`
	StdFitness     float64 `json:"std_fitness"`
	MutationRate   float64 `json:"mutation_rate"`
	TournamentSize int     `json:"tournament_size"`
	CacheSize      int     `json:"cache_size"`
	Regenerated    int     `json:"regenerated"`
}

// Result is the outcome of a completed run. A fitness of exactly 0
// means the search never converged on a valid, non-trivial layout.
type Result struct {
	Best        grid.Grid
	Fitness     float64
	Generations int
	Evaluations int
	Distinct    int
	Regenerated int
	Elapsed     time.Duration
}

// Sampler produces a fresh random grid; it backs the
// repair-by-regeneration policy and the terminal fallback answer.
type Sampler func(shape grid.Shape, rng *rand.Rand) grid.Grid

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source used for selection, crossover,
// mutation and regeneration draws.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSampler replaces the default uniform grid sampler.
func WithSampler(s Sampler) Option {
	return func(e *Engine) { e.sample = s }
}

// WithObserver registers a callback invoked once per generation with
// its summary statistics.
func WithObserver(fn func(GenerationStats)) Option {
	return func(e *Engine) { e.observe = fn }
}

// Engine owns the population and all evolving control parameters for
// one run. It is not safe for concurrent use; parallelism lives
// inside the evaluation step only.
type Engine struct {
	cfg     *config.Config
	oracle  sim.Oracle
	eval    *eval.Evaluator
	rng     *rand.Rand
	sample  Sampler
	observe func(GenerationStats)
}

// New validates cfg and builds an engine around the given oracle.
func New(cfg *config.Config, oracle sim.Oracle, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		oracle: oracle,
		eval:   eval.NewEvaluator(oracle, cfg.Fuel, cfg.Eval.Workers),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		sample: func(shape grid.Shape, rng *rand.Rand) grid.Grid {
			return grid.Random(shape, grid.CodeMin, grid.CodeMax, rng)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes the configured number of generations and returns the
// best valid layout found. If the final best-by-fitness individual is
// invalid, a fresh random grid with fitness 0 is returned instead: a
// run never reports an invalid layout as its answer.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	shape := e.cfg.Shape()
	popSize := e.cfg.GA.Population
	generations := e.cfg.GA.Generations

	pop := ga.NewZeroPopulation(popSize, shape)
	rate := e.cfg.GA.InitialMutationRate
	regenerated := 0
	start := time.Now()

	var fits []float64
	for gen := 0; gen < generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		var err error
		fits, err = e.eval.EvaluatePopulation(pop)
		if err != nil {
			return Result{}, fmt.Errorf("engine: evaluating generation %d: %w", gen, err)
		}

		k := e.tournamentSize(gen)

		// The final generation is evaluated but not bred, so the
		// fitness vector stays aligned with the reported population.
		if gen == generations-1 {
			e.emit(gen, fits, rate, k, 0)
			break
		}

		var regen int
		pop, regen, err = e.nextPopulation(pop, fits, k, rate, gen)
		if err != nil {
			return Result{}, err
		}
		regenerated += regen

		if rate > e.cfg.GA.MutationFloor {
			rate = math.Max(rate*e.cfg.GA.MutationDecay, e.cfg.GA.MutationFloor)
		}

		e.emit(gen, fits, rate, k, regen)
	}

	res := Result{
		Generations: generations,
		Evaluations: generations * popSize,
		Distinct:    e.eval.CacheLen(),
		Regenerated: regenerated,
		Elapsed:     time.Since(start),
	}

	best := ga.BestIndex(fits)
	if e.oracle.Valid(pop[best]) {
		res.Best = pop[best].Clone()
		res.Fitness = fits[best]
		return res, nil
	}

	klog.Warningf("best individual by fitness is invalid, falling back to a random layout")
	res.Best = e.sample(shape, e.rng)
	res.Fitness = 0
	return res, nil
}

// nextPopulation carries the elites over unchanged and fills the rest
// with bred children. Children that fail structural validation are
// replaced by fresh random grids rather than repaired in place.
func (e *Engine) nextPopulation(pop []grid.Grid, fits []float64, k int, rate float64, gen int) ([]grid.Grid, int, error) {
	next := make([]grid.Grid, 0, len(pop))
	for _, i := range ga.EliteIndices(fits, e.cfg.GA.Elites) {
		next = append(next, pop[i])
	}

	regen := 0
	for len(next) < len(pop) {
		p1, err := ga.Tournament(pop, fits, k, e.rng)
		if err != nil {
			return nil, 0, err
		}
		p2, err := ga.Tournament(pop, fits, k, e.rng)
		if err != nil {
			return nil, 0, err
		}

		child, err := ga.SinglePoint(p1, p2, e.rng)
		if err != nil {
			return nil, 0, err
		}
		child = ga.Mutate(child, rate, e.rng)

		if normalized, err := e.oracle.Normalize(child); err != nil {
			klog.Warningf("replacing invalid child in generation %d: %v", gen, err)
			child = e.sample(child.Shape, e.rng)
			regen++
		} else {
			child = normalized
		}
		next = append(next, child)
	}
	return next, regen, nil
}

// tournamentSize decays geometrically with the generation counter,
// floored at 2.
func (e *Engine) tournamentSize(gen int) int {
	k := int(float64(e.cfg.GA.TournamentBase) * math.Pow(e.cfg.GA.TournamentDecay, float64(gen)))
	if k < 2 {
		k = 2
	}
	return k
}

func (e *Engine) emit(gen int, fits []float64, rate float64, k, regen int) {
	stats := GenerationStats{
		Generation:     gen,
		BestFitness:    fits[ga.BestIndex(fits)],
		MeanFitness:    stat.Mean(fits, nil),
		StdFitness:     stat.StdDev(fits, nil),
		MutationRate:   rate,
		TournamentSize: k,
		CacheSize:      e.eval.CacheLen(),
		Regenerated:    regen,
	}
	klog.V(1).InfoS("generation complete",
		"generation", gen,
		"bestFitness", stats.BestFitness,
		"meanFitness", stats.MeanFitness,
		"mutationRate", stats.MutationRate,
		"tournamentSize", stats.TournamentSize,
		"regenerated", stats.Regenerated,
	)
	if e.observe != nil {
		e.observe(stats)
	}
}
