// Package sim defines the simulation oracle the optimizer searches
// against, plus a small built-in reference implementation. The search
// core only sees the Oracle interface; the real NuclearCraft-grade
// simulation can be swapped in behind it.
package sim

import "reactorai/internal/grid"

// Metrics is the bundle of named values the simulator reports for a
// (grid, fuel) pair.
type Metrics struct {
	EnergyGen  float64 `json:"energy_gen"`
	HeatGen    float64 `json:"heat_gen"`
	HeatDiff   float64 `json:"heat_diff"`
	Efficiency float64 `json:"efficiency"`
}

// Oracle is the external simulator contract the search core depends on.
//
// Metrics must be deterministic for a given (grid, fuel) pair and may
// be expensive; an error from it is fatal to a run. Valid is a cheap
// structural predicate with no side effects. Normalize either returns
// a possibly-repaired copy of the grid or an error describing why the
// layout is structurally invalid.
type Oracle interface {
	Metrics(g grid.Grid, fuel string) (Metrics, error)
	Valid(g grid.Grid) bool
	Normalize(g grid.Grid) (grid.Grid, error)
}
