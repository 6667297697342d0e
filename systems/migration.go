package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
)

// Intent records that an animal will try to move this year and where to.
// Intents are computed for the whole island before any is applied.
type Intent struct {
	Entity  ecs.Entity
	Species components.Species
	From    components.Location
	To      components.Location
}

// PrepareMigrants draws, once per resident, whether it tries to migrate and,
// if so, one of the four orthogonal neighbours uniformly. Animals born this
// year stay put. The cell is not modified.
func (c *Cell) PrepareMigrants(rng RNG) []Intent {
	var intents []Intent
	for _, s := range components.AllSpecies() {
		p := c.params.Animal(s)
		for _, e := range c.pops[s].members {
			a := c.herd.Get(e)
			if a.Newborn {
				continue
			}
			if rng.Float64() >= a.MigrationProbability(p) {
				continue
			}
			d := components.Neighbours[rng.Intn(len(components.Neighbours))]
			intents = append(intents, Intent{
				Entity:  e,
				Species: s,
				From:    c.Loc,
				To:      c.Loc.Offset(d[0], d[1]),
			})
		}
	}
	return intents
}
