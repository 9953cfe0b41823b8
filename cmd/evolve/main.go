package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"

	"reactorai/internal/archive"
	"reactorai/internal/config"
	"reactorai/internal/engine"
	"reactorai/internal/eval"
	"reactorai/internal/grid"
	"reactorai/internal/logging"
	"reactorai/internal/render"
	"reactorai/internal/sim"
)

// referenceCells is a known-good hand-designed 3x3x3 layout used as a
// scoring benchmark: moderator column core wrapped in fuel and
// coolers.
var referenceCells = []int{
	12, 1, 12, 12, 1, 12, 12, 1, 12,
	1, 2, 1, 1, 2, 1, 1, 2, 1,
	12, 1, 12, 12, 1, 12, 12, 1, 12,
}

func main() {
	klog.InitFlags(nil)
	configPath := flag.String("config", "configs/reactor.yaml", "path to config file")
	generations := flag.Int("generations", 0, "override the configured generation budget")
	benchmark := flag.Bool("benchmark", false, "score the reference lattice and exit")
	flag.Parse()
	defer klog.Flush()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *generations > 0 {
		cfg.GA.Generations = *generations
	}

	oracle := sim.NewHeuristic()

	if *benchmark {
		if err := runBenchmark(cfg, oracle); err != nil {
			fmt.Fprintf(os.Stderr, "Benchmark failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, oracle); err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, oracle sim.Oracle) error {
	ctx := context.Background()

	fmt.Printf("Reactor layout optimizer - Fuel: %s, Lattice: %s\n", cfg.Fuel, cfg.Shape())
	fmt.Printf("Population: %d, Generations: %d, Elites: %d\n",
		cfg.GA.Population, cfg.GA.Generations, cfg.GA.Elites)
	fmt.Println("---")

	writer, err := logging.NewWriter(cfg.Logging.CSVPath, cfg.Logging.JSONPath)
	if err != nil {
		return fmt.Errorf("creating metrics writer: %w", err)
	}
	defer writer.Close()

	var store *archive.Store
	var runID string
	if cfg.Archive.Enabled {
		store = archive.NewStore(cfg.Archive.Path)
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer store.Close()

		runID, err = store.BeginRun(ctx, cfg.Fuel, cfg.Shape(), cfg.GA.Population, cfg.GA.Generations)
		if err != nil {
			return fmt.Errorf("recording run start: %w", err)
		}
	}

	observer := func(s engine.GenerationStats) {
		if cfg.Logging.EveryGenSummary {
			writer.Log(s)
		}
		if store != nil {
			if err := store.RecordGeneration(ctx, runID, s); err != nil {
				klog.Warningf("archiving generation %d: %v", s.Generation, err)
			}
		}
	}

	eng, err := engine.New(cfg, oracle, engine.WithObserver(observer))
	if err != nil {
		return err
	}

	res, err := eng.Run(ctx)
	if err != nil {
		return err
	}

	best := res.Best
	if normalized, err := oracle.Normalize(best); err == nil {
		best = normalized
	} else {
		klog.Warningf("final layout could not be normalized: %v", err)
	}

	fmt.Println("---")
	fmt.Printf("Best fitness: %.3f\n", res.Fitness)
	printGrid(best)
	if metrics, err := oracle.Metrics(best, cfg.Fuel); err == nil {
		fmt.Printf("Metrics: energy=%.1f heat=%.1f heat_diff=%.1f efficiency=%.1f%%\n",
			metrics.EnergyGen, metrics.HeatGen, metrics.HeatDiff, metrics.Efficiency)
	}
	fmt.Printf("Run complete: %s evaluations (%s distinct layouts) in %s\n",
		humanize.Comma(int64(res.Evaluations)), humanize.Comma(int64(res.Distinct)),
		res.Elapsed.Round(time.Millisecond))

	// Rendering and archiving the outcome are fire-and-forget.
	if err := render.Grid(best, "Best reactor layout", cfg.Render.Path); err != nil {
		klog.Warningf("rendering best layout: %v", err)
	} else {
		fmt.Printf("Saved layout to %s\n", cfg.Render.Path)
	}
	if store != nil {
		res.Best = best
		if err := store.FinishRun(ctx, runID, res); err != nil {
			klog.Warningf("archiving run outcome: %v", err)
		}
	}
	return nil
}

func runBenchmark(cfg *config.Config, oracle sim.Oracle) error {
	ref, err := grid.FromFlat(grid.DefaultShape, referenceCells)
	if err != nil {
		return err
	}

	evaluator := eval.NewEvaluator(oracle, cfg.Fuel, cfg.Eval.Workers)
	score, err := evaluator.Evaluate(ref)
	if err != nil {
		return err
	}
	metrics, err := oracle.Metrics(ref, cfg.Fuel)
	if err != nil {
		return err
	}

	fmt.Printf("Reference lattice benchmark (fuel %s)\n", cfg.Fuel)
	printGrid(ref)
	fmt.Printf("Score: %.3f\n", score)
	fmt.Printf("Metrics: energy=%.1f heat=%.1f heat_diff=%.1f efficiency=%.1f%%\n",
		metrics.EnergyGen, metrics.HeatGen, metrics.HeatDiff, metrics.Efficiency)

	if err := render.Grid(ref, "Reference reactor layout", "artifacts/benchmark.html"); err != nil {
		klog.Warningf("rendering reference layout: %v", err)
	}
	return nil
}

func printGrid(g grid.Grid) {
	for x := 0; x < g.Shape.X; x++ {
		fmt.Printf("Layer x=%d:\n", x)
		for y := 0; y < g.Shape.Y; y++ {
			fmt.Print(" ")
			for z := 0; z < g.Shape.Z; z++ {
				fmt.Printf(" %2d", g.At(x, y, z))
			}
			fmt.Println()
		}
	}
}
