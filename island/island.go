// Package island holds the grid of landscape cells and runs the annual cycle over it.
package island

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/systems"
	"github.com/pthm-cable/biosim/telemetry"
)

// ErrInvalidLocation is returned for coordinates outside the grid or on water.
var ErrInvalidLocation = errors.New("invalid location")

// Option configures an Island.
type Option func(*Island)

// WithPredationCurve replaces the default linear kill-probability ramp.
func WithPredationCurve(curve systems.PredationCurve) Option {
	return func(isl *Island) { isl.curve = curve }
}

// WithBirthWeight replaces the normal birth-weight distribution.
func WithBirthWeight(draw systems.BirthWeightFunc) Option {
	return func(isl *Island) { isl.birthWeight = draw }
}

// WithPerf times each phase of every year.
func WithPerf(perf *telemetry.PerfCollector) Option {
	return func(isl *Island) { isl.perf = perf }
}

// Island is a rectangular grid of cells with a water border, the animals
// living on it and the single random stream that drives every draw.
type Island struct {
	rows, cols int
	cells      [][]*systems.Cell // [row-1][col-1]

	herd   *systems.Herd
	rng    systems.RNG
	params *config.Registry

	curve       systems.PredationCurve
	birthWeight systems.BirthWeightFunc

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector

	year    int
	pending []introduction
}

// New parses the terrain map, places the initial population and seeds the
// random stream. A nil registry uses the reference constants. Nothing is
// returned on error.
func New(geography string, population []components.PopulationGroup, seed int64, reg *config.Registry, opts ...Option) (*Island, error) {
	terrain, err := ParseMap(geography)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = config.DefaultRegistry()
	}

	isl := &Island{
		rows:        len(terrain),
		cols:        len(terrain[0]),
		herd:        systems.NewHerd(),
		rng:         rand.New(rand.NewSource(seed)),
		params:      reg,
		curve:       systems.LinearRamp,
		birthWeight: systems.NormalBirthWeight,
		collector:   telemetry.NewCollector(),
	}
	for _, opt := range opts {
		opt(isl)
	}

	passable := 0
	isl.cells = make([][]*systems.Cell, isl.rows)
	for r, row := range terrain {
		isl.cells[r] = make([]*systems.Cell, isl.cols)
		for c, t := range row {
			isl.cells[r][c] = systems.NewCell(components.Loc(r+1, c+1), t, isl.herd, reg)
			if t.Passable() {
				passable++
			}
		}
	}

	if err := isl.AddPopulation(population); err != nil {
		return nil, err
	}

	slog.Info("island_built",
		"rows", isl.rows,
		"cols", isl.cols,
		"passable_cells", passable,
		"animals", isl.herd.Len(),
		"seed", seed,
	)
	return isl, nil
}

// Registry returns the parameter registry shared by every cell and animal.
func (isl *Island) Registry() *config.Registry {
	return isl.params
}

// Year returns the number of years simulated so far.
func (isl *Island) Year() int {
	return isl.year
}

// Rows returns the number of map rows.
func (isl *Island) Rows() int { return isl.rows }

// Cols returns the number of map columns.
func (isl *Island) Cols() int { return isl.cols }

// cellAt returns the cell at loc or nil outside the grid.
func (isl *Island) cellAt(loc components.Location) *systems.Cell {
	if loc.Row < 1 || loc.Row > isl.rows || loc.Col < 1 || loc.Col > isl.cols {
		return nil
	}
	return isl.cells[loc.Row-1][loc.Col-1]
}

// Cell returns the cell at loc. Coordinates outside the grid or on water are rejected.
func (isl *Island) Cell(loc components.Location) (*systems.Cell, error) {
	c := isl.cellAt(loc)
	if c == nil {
		return nil, fmt.Errorf("%w: %s is outside the %dx%d grid", ErrInvalidLocation, loc, isl.rows, isl.cols)
	}
	if !c.Passable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidLocation, loc, c.Terrain)
	}
	return c, nil
}

// eachCell visits every cell in row-major order.
func (isl *Island) eachCell(fn func(c *systems.Cell)) {
	for _, row := range isl.cells {
		for _, c := range row {
			fn(c)
		}
	}
}

// eachPassable visits every cell that can host animals in row-major order.
func (isl *Island) eachPassable(fn func(c *systems.Cell)) {
	isl.eachCell(func(c *systems.Cell) {
		if c.Passable() {
			fn(c)
		}
	})
}
