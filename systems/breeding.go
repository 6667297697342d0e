package systems

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/biosim/components"
)

// BirthWeightFunc draws the weight of a newborn.
type BirthWeightFunc func(rng RNG, p *components.AnimalParams) float64

// NormalBirthWeight draws from N(w_birth, sigma_birth) by inverse transform,
// so the only randomness consumed is one uniform from rng.
func NormalBirthWeight(rng RNG, p *components.AnimalParams) float64 {
	return distuv.Normal{Mu: p.WBirth, Sigma: p.SigmaBirth}.Quantile(openUnit(rng))
}

// LogNormalBirthWeight draws from the log-normal with mean w_birth and
// standard deviation sigma_birth. Draws are always positive.
func LogNormalBirthWeight(rng RNG, p *components.AnimalParams) float64 {
	variance := math.Log1p((p.SigmaBirth * p.SigmaBirth) / (p.WBirth * p.WBirth))
	mu := math.Log(p.WBirth) - variance/2
	return math.Exp(distuv.Normal{Mu: mu, Sigma: math.Sqrt(variance)}.Quantile(openUnit(rng)))
}

// openUnit returns a uniform draw in (0, 1); Quantile is infinite at 0.
func openUnit(rng RNG) float64 {
	u := rng.Float64()
	if u <= 0 {
		return math.SmallestNonzeroFloat64
	}
	return u
}

// Procreate gives every animal of species s one chance to give birth. The
// population size used for the probability is taken before any birth, and
// newborns join the cell only after every parent has been evaluated.
// Returns the number of births.
func (c *Cell) Procreate(s components.Species, rng RNG, birthWeight BirthWeightFunc) int {
	pop := c.pops[s]
	n := pop.Len()
	if n < 2 {
		return 0
	}
	p := c.params.Animal(s)

	var newborns []components.Animal
	for _, e := range pop.Members() {
		parent := c.herd.Get(e)
		prob := parent.ProcreationProbability(p, n)
		if prob <= 0 || rng.Float64() >= prob {
			continue
		}
		w := birthWeight(rng, p)
		if !parent.GiveBirth(p, w) {
			continue
		}
		baby := components.Animal{Species: s, Weight: w, Newborn: true}
		baby.Refresh(p)
		newborns = append(newborns, baby)
	}

	// Spawning may move component storage, so no parent pointer is used past here.
	for _, baby := range newborns {
		pop.Add(c.herd.Spawn(baby))
	}
	return len(newborns)
}
