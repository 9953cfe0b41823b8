package sim

import (
	"fmt"

	"reactorai/internal/grid"
)

// Cell code groups used by the reference simulator.
const (
	codeAir       = 0
	codeFuelCell  = 1
	codeModerator = 2
	coolerMin     = 3
	coolerMax     = 16
	codeReflector = 17
)

const (
	baseEnergy     = 100.0 // RF/t per fuel cell before bonuses
	baseHeat       = 50.0  // H/t per fuel cell before bonuses
	moderatorBoost = 15.0  // extra RF/t per moderator touching a fuel cell
	adjacencyHeat  = 30.0  // extra H/t per fuel cell touching another
	reflectorBonus = 5.0   // RF/t per reflector touching a fuel cell
)

// coolerRate maps cooler codes 3..16 to their cooling capacity in H/t.
// The progression loosely follows the stock cooler tiers.
var coolerRate = [...]float64{20, 25, 30, 40, 45, 50, 55, 60, 65, 70, 80, 90, 100, 120}

type fuelProps struct {
	energyMult float64
	heatMult   float64
}

var fuels = map[string]fuelProps{
	"TBU":     {energyMult: 1.0, heatMult: 1.0},
	"LEU-235": {energyMult: 1.6, heatMult: 1.9},
	"HEU-235": {energyMult: 3.6, heatMult: 4.3},
	"LEU-233": {energyMult: 1.9, heatMult: 2.2},
	"MOX-239": {energyMult: 1.05, heatMult: 1.15},
}

// Heuristic is a table-driven stand-in for the full reactor
// simulation: per-cell contributions plus 6-neighbour adjacency
// bonuses. It exists so the optimizer runs end to end without the
// real simulator; its numbers are plausible, not canonical.
type Heuristic struct{}

// NewHeuristic returns the built-in reference oracle.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Metrics computes the reference metrics bundle for g.
func (h *Heuristic) Metrics(g grid.Grid, fuel string) (Metrics, error) {
	props, ok := fuels[fuel]
	if !ok {
		return Metrics{}, fmt.Errorf("sim: unknown fuel %q", fuel)
	}

	var energy, heat, cooling float64
	fuelCells := 0

	forEachCell(g, func(x, y, z, code int) {
		switch {
		case code == codeFuelCell:
			fuelCells++
			energy += baseEnergy
			heat += baseHeat
			forEachNeighbour(g, x, y, z, func(n int) {
				switch {
				case n == codeModerator:
					energy += moderatorBoost
				case n == codeFuelCell:
					heat += adjacencyHeat / 2 // counted from both sides
				case n == codeReflector:
					energy += reflectorBonus
				}
			})
		case code >= coolerMin && code <= coolerMax:
			cooling += coolerRate[code-coolerMin]
		}
	})

	energy *= props.energyMult
	heat *= props.heatMult

	m := Metrics{
		EnergyGen: energy,
		HeatGen:   heat,
		HeatDiff:  heat - cooling,
	}
	if fuelCells > 0 {
		m.Efficiency = energy / (float64(fuelCells) * baseEnergy) * 100
	}
	return m, nil
}

// Valid reports whether g is structurally sound: at least one fuel
// cell, and every cooler touching a fuel cell or moderator (inert
// coolers are a placement error in the stock rules).
func (h *Heuristic) Valid(g grid.Grid) bool {
	ok := true
	fuelCells := 0
	forEachCell(g, func(x, y, z, code int) {
		if code == codeFuelCell {
			fuelCells++
		}
		if code >= coolerMin && code <= coolerMax && !coolerActive(g, x, y, z) {
			ok = false
		}
	})
	return ok && fuelCells > 0
}

// Normalize repairs what it can: inert coolers are cleared to air. A
// layout with no fuel cell at all cannot be repaired and errors.
func (h *Heuristic) Normalize(g grid.Grid) (grid.Grid, error) {
	fuelCells := 0
	for _, code := range g.Cells {
		if code == codeFuelCell {
			fuelCells++
		}
	}
	if fuelCells == 0 {
		return grid.Grid{}, fmt.Errorf("sim: layout has no fuel cells")
	}

	out := g.Clone()
	forEachCell(g, func(x, y, z, code int) {
		if code >= coolerMin && code <= coolerMax && !coolerActive(g, x, y, z) {
			out.Cells[flatIndex(g.Shape, x, y, z)] = codeAir
		}
	})
	return out, nil
}

func coolerActive(g grid.Grid, x, y, z int) bool {
	active := false
	forEachNeighbour(g, x, y, z, func(n int) {
		if n == codeFuelCell || n == codeModerator {
			active = true
		}
	})
	return active
}

func flatIndex(s grid.Shape, x, y, z int) int {
	return (x*s.Y+y)*s.Z + z
}

func forEachCell(g grid.Grid, fn func(x, y, z, code int)) {
	for x := 0; x < g.Shape.X; x++ {
		for y := 0; y < g.Shape.Y; y++ {
			for z := 0; z < g.Shape.Z; z++ {
				fn(x, y, z, g.At(x, y, z))
			}
		}
	}
}

var neighbourOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

func forEachNeighbour(g grid.Grid, x, y, z int, fn func(code int)) {
	for _, d := range neighbourOffsets {
		nx, ny, nz := x+d[0], y+d[1], z+d[2]
		if nx < 0 || nx >= g.Shape.X || ny < 0 || ny >= g.Shape.Y || nz < 0 || nz >= g.Shape.Z {
			continue
		}
		fn(g.At(nx, ny, nz))
	}
}
