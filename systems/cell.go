package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
)

// ErrImpassable is returned when animals are placed on terrain that cannot host them.
var ErrImpassable = errors.New("terrain cannot host animals")

// Params gives cells read access to the shared constant tables.
// *config.Registry satisfies it.
type Params interface {
	Animal(s components.Species) *components.AnimalParams
	Landscape(t components.Terrain) *components.LandscapeParams
}

// Cell is one landscape square: its terrain, its fodder and the animals on it.
type Cell struct {
	Loc     components.Location
	Terrain components.Terrain
	Fodder  float64

	pops   [components.NumSpecies]*Population
	herd   *Herd
	params Params
}

// NewCell creates a cell with fodder at the terrain maximum.
func NewCell(loc components.Location, terrain components.Terrain, herd *Herd, params Params) *Cell {
	c := &Cell{Loc: loc, Terrain: terrain, herd: herd, params: params}
	for i := range c.pops {
		c.pops[i] = NewPopulation()
	}
	if terrain.BearsFodder() {
		c.Fodder = params.Landscape(terrain).FMax
	}
	return c
}

// Passable reports whether animals may live here.
func (c *Cell) Passable() bool {
	return c.Terrain.Passable()
}

// Population returns the set of animals of one species in the cell.
func (c *Cell) Population(s components.Species) *Population {
	return c.pops[s]
}

// Counts returns the herbivore and carnivore counts.
func (c *Cell) Counts() (herbivores, carnivores int) {
	return c.pops[components.Herbivore].Len(), c.pops[components.Carnivore].Len()
}

// Place stores a new animal in the arena and adds it to the cell.
func (c *Cell) Place(a components.Animal) (ecs.Entity, error) {
	if !c.Passable() {
		return ecs.Entity{}, fmt.Errorf("%w: %s at %s", ErrImpassable, c.Terrain, c.Loc)
	}
	e := c.herd.Spawn(a)
	c.pops[a.Species].Add(e)
	return e, nil
}

// Insert adds an existing animal, e.g. one arriving by migration.
func (c *Cell) Insert(e ecs.Entity, s components.Species) {
	c.pops[s].Add(e)
}

// Extract removes an animal from the cell without killing it.
func (c *Cell) Extract(e ecs.Entity, s components.Species) bool {
	return c.pops[s].Remove(e)
}

// GrowFodder regrows alpha of the gap to f_max. Terrain without fodder stays at 0.
func (c *Cell) GrowFodder() {
	if !c.Terrain.BearsFodder() {
		c.Fodder = 0
		return
	}
	lp := c.params.Landscape(c.Terrain)
	if c.Fodder > lp.FMax {
		c.Fodder = lp.FMax
	}
	c.Fodder += lp.Alpha * (lp.FMax - c.Fodder)
	if c.Fodder > lp.FMax {
		c.Fodder = lp.FMax
	}
}

// EachAnimal visits the animals of the cell, herbivores first.
func (c *Cell) EachAnimal(fn func(e ecs.Entity, a *components.Animal)) {
	for _, s := range components.AllSpecies() {
		for _, e := range c.pops[s].members {
			fn(e, c.herd.Get(e))
		}
	}
}
