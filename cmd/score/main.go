// Command score evaluates a single saved layout: fitness, metrics,
// validity, and an HTML rendering. Useful for inspecting a run's
// answer or a hand-designed lattice without evolving anything.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"reactorai/internal/eval"
	"reactorai/internal/grid"
	"reactorai/internal/render"
	"reactorai/internal/sim"
)

type layoutFile struct {
	Shape grid.Shape `yaml:"shape"`
	Cells []int      `yaml:"cells"`
}

func main() {
	klog.InitFlags(nil)
	layoutPath := flag.String("layout", "", "path to a YAML layout file (shape + flat cells)")
	fuel := flag.String("fuel", "TBU", "fuel identifier")
	outPath := flag.String("out", "", "optional HTML rendering destination")
	flag.Parse()
	defer klog.Flush()

	if *layoutPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: score -layout <file.yaml> [-fuel TBU] [-out layout.html]")
		os.Exit(1)
	}

	g, err := loadLayout(*layoutPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading layout: %v\n", err)
		os.Exit(1)
	}

	oracle := sim.NewHeuristic()
	evaluator := eval.NewEvaluator(oracle, *fuel, 0)

	score, err := evaluator.Evaluate(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scoring layout: %v\n", err)
		os.Exit(1)
	}
	metrics, err := oracle.Metrics(g, *fuel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing metrics: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Layout %s (%s, fuel %s)\n", *layoutPath, g.Shape, *fuel)
	fmt.Printf("Valid: %v\n", oracle.Valid(g))
	fmt.Printf("Score: %.3f\n", score)
	fmt.Printf("Metrics: energy=%.1f heat=%.1f heat_diff=%.1f efficiency=%.1f%%\n",
		metrics.EnergyGen, metrics.HeatGen, metrics.HeatDiff, metrics.Efficiency)

	if *outPath != "" {
		if err := render.Grid(g, "Reactor layout", *outPath); err != nil {
			klog.Warningf("rendering layout: %v", err)
		} else {
			fmt.Printf("Saved rendering to %s\n", *outPath)
		}
	}
}

func loadLayout(path string) (grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return grid.Grid{}, err
	}

	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return grid.Grid{}, err
	}
	for _, v := range f.Cells {
		if v < grid.CodeMin || v > grid.CodeMax {
			return grid.Grid{}, fmt.Errorf("cell code %d outside [%d, %d]", v, grid.CodeMin, grid.CodeMax)
		}
	}
	return grid.FromFlat(f.Shape, f.Cells)
}
