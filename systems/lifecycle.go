package systems

import (
	"github.com/pthm-cable/biosim/components"
)

// AgeAndLoseWeight ages every resident by one year and applies the annual weight loss.
func (c *Cell) AgeAndLoseWeight() {
	for _, s := range components.AllSpecies() {
		p := c.params.Animal(s)
		for _, e := range c.pops[s].members {
			a := c.herd.Get(e)
			a.AgeOneYear(p)
			a.LoseWeightAnnual(p)
		}
	}
}

// RemoveDead draws death for every resident. Animals at weight 0 die without a
// draw. The dead leave the cell and are queued for removal from the herd.
// Returns the deaths per species.
func (c *Cell) RemoveDead(rng RNG) [components.NumSpecies]int {
	var deaths [components.NumSpecies]int
	for _, s := range components.AllSpecies() {
		p := c.params.Animal(s)
		pop := c.pops[s]
		for _, e := range pop.Members() {
			a := c.herd.Get(e)
			if a.Weight > 0 && rng.Float64() >= a.DeathProbability(p) {
				continue
			}
			pop.Remove(e)
			c.herd.Kill(e)
			deaths[s]++
		}
	}
	return deaths
}
