package island

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
	"github.com/pthm-cable/biosim/telemetry"
)

// CellCounts is the population of one passable cell.
type CellCounts struct {
	Loc        components.Location
	Herbivores int
	Carnivores int
}

// AnimalState is a per-animal snapshot for histograms.
type AnimalState struct {
	Loc     components.Location
	Species components.Species
	Age     int
	Weight  float64
	Fitness float64
}

// NumAnimals returns the number of animals on the island.
func (isl *Island) NumAnimals() int {
	return isl.herd.Len()
}

// TotalCounts returns the number of animals per species.
func (isl *Island) TotalCounts() [components.NumSpecies]int {
	var counts [components.NumSpecies]int
	isl.eachPassable(func(c *systems.Cell) {
		h, k := c.Counts()
		counts[components.Herbivore] += h
		counts[components.Carnivore] += k
	})
	return counts
}

// NumAnimalsPerSpecies returns the total counts keyed by species name.
func (isl *Island) NumAnimalsPerSpecies() map[string]int {
	counts := isl.TotalCounts()
	out := make(map[string]int, len(counts))
	for _, s := range components.AllSpecies() {
		out[s.String()] = counts[s]
	}
	return out
}

// PerCellCounts returns the population of every passable cell in row-major order.
func (isl *Island) PerCellCounts() []CellCounts {
	var out []CellCounts
	isl.eachPassable(func(c *systems.Cell) {
		h, k := c.Counts()
		out = append(out, CellCounts{Loc: c.Loc, Herbivores: h, Carnivores: k})
	})
	return out
}

// CountGrid returns a rows x cols grid of counts for one species; water cells are 0.
func (isl *Island) CountGrid(s components.Species) [][]int {
	grid := make([][]int, isl.rows)
	for r, row := range isl.cells {
		grid[r] = make([]int, isl.cols)
		for c, cell := range row {
			grid[r][c] = cell.Population(s).Len()
		}
	}
	return grid
}

// FodderGrid returns a rows x cols grid of the current fodder amounts.
func (isl *Island) FodderGrid() [][]float64 {
	grid := make([][]float64, isl.rows)
	for r, row := range isl.cells {
		grid[r] = make([]float64, isl.cols)
		for c, cell := range row {
			grid[r][c] = cell.Fodder
		}
	}
	return grid
}

// AnimalStates snapshots every animal, cell by cell in row-major order.
func (isl *Island) AnimalStates() []AnimalState {
	out := make([]AnimalState, 0, isl.herd.Len())
	isl.eachPassable(func(c *systems.Cell) {
		c.EachAnimal(func(_ ecs.Entity, a *components.Animal) {
			out = append(out, AnimalState{
				Loc:     c.Loc,
				Species: a.Species,
				Age:     a.Age,
				Weight:  a.Weight,
				Fitness: a.Fitness,
			})
		})
	})
	return out
}

// Census gathers counts, trait values and total fodder for telemetry.
func (isl *Island) Census() telemetry.Census {
	var census telemetry.Census
	isl.herd.Each(func(_ ecs.Entity, a *components.Animal) {
		census.Add(a)
	})
	isl.eachCell(func(c *systems.Cell) {
		census.Fodder += c.Fodder
	})
	return census
}

// CellRecords returns one telemetry record per passable cell.
func (isl *Island) CellRecords() []telemetry.CellRecord {
	var out []telemetry.CellRecord
	isl.eachPassable(func(c *systems.Cell) {
		h, k := c.Counts()
		out = append(out, telemetry.CellRecord{
			Year:       isl.year,
			Row:        c.Loc.Row,
			Col:        c.Loc.Col,
			Terrain:    c.Terrain.String(),
			Fodder:     c.Fodder,
			Herbivores: h,
			Carnivores: k,
		})
	})
	return out
}
