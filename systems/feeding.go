package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
)

// PredationCurve maps the fitness advantage of a carnivore over its prey to a
// kill probability, given the species threshold DeltaPhiMax.
type PredationCurve func(diff, threshold float64) float64

// LinearRamp is the default predation curve: 0 at or below no advantage,
// diff/threshold in between, 1 at or above the threshold.
func LinearRamp(diff, threshold float64) float64 {
	switch {
	case diff <= 0:
		return 0
	case diff >= threshold:
		return 1
	}
	return diff / threshold
}

// FeedHerbivores lets herbivores graze in descending fitness order, each up
// to its appetite, until the fodder runs out. Returns the amount eaten.
func (c *Cell) FeedHerbivores() float64 {
	p := c.params.Animal(components.Herbivore)
	var eaten float64
	for _, e := range c.pops[components.Herbivore].SortedByFitness(c.herd, true) {
		if c.Fodder <= 0 {
			break
		}
		meal := math.Min(p.F, c.Fodder)
		c.Fodder -= meal
		eaten += meal
		c.herd.Get(e).FeedingGain(p, meal)
	}
	if c.Fodder < 0 {
		c.Fodder = 0
	}
	return eaten
}

// FeedCarnivores lets carnivores hunt in descending fitness order. Each tries
// the herbivores weakest first and stops once its appetite is met or the next
// prey is at least as fit. Killed prey leave the cell and are queued for
// removal from the herd. Returns the number of kills.
func (c *Cell) FeedCarnivores(rng RNG, curve PredationCurve) int {
	herbs := c.pops[components.Herbivore]
	if herbs.Len() == 0 || c.pops[components.Carnivore].Len() == 0 {
		return 0
	}
	cp := c.params.Animal(components.Carnivore)
	prey := herbs.SortedByFitness(c.herd, false)
	killed := make(map[ecs.Entity]bool)

	kills := 0
	for _, ce := range c.pops[components.Carnivore].SortedByFitness(c.herd, true) {
		carn := c.herd.Get(ce)
		var eaten float64
		for _, he := range prey {
			if eaten >= cp.F {
				break
			}
			if killed[he] {
				continue
			}
			herb := c.herd.Get(he)
			diff := carn.Fitness - herb.Fitness
			if diff <= 0 {
				break
			}
			if rng.Float64() >= curve(diff, cp.DeltaPhiMax) {
				continue
			}
			meal := math.Min(herb.Weight, cp.F-eaten)
			carn.FeedingGain(cp, meal)
			eaten += meal

			killed[he] = true
			herbs.Remove(he)
			c.herd.Kill(he)
			kills++
		}
	}
	return kills
}
