package components

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAnimal is returned when an animal is described with a negative age or weight.
var ErrInvalidAnimal = errors.New("invalid animal")

// maxFitness is the largest representable value below 1.
var maxFitness = math.Nextafter(1, 0)

// Animal is the ECS component for a single herbivore or carnivore.
// Fitness is derived from Age and Weight and refreshed by every mutator.
type Animal struct {
	Species Species
	Age     int
	Weight  float64
	Fitness float64

	// Newborn marks animals born during the current year. They sit out
	// migration and the flag is cleared when they age.
	Newborn bool
}

// NewAnimal validates the description and returns an animal with fresh fitness.
func NewAnimal(s Species, age int, weight float64, p *AnimalParams) (Animal, error) {
	if int(s) >= NumSpecies {
		return Animal{}, fmt.Errorf("%w: species %d", ErrUnknownSpecies, s)
	}
	if age < 0 {
		return Animal{}, fmt.Errorf("%w: age %d is negative", ErrInvalidAnimal, age)
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return Animal{}, fmt.Errorf("%w: weight %v is not a finite non-negative number", ErrInvalidAnimal, weight)
	}
	a := Animal{Species: s, Age: age, Weight: weight}
	a.Refresh(p)
	return a, nil
}

// Fitness computes the product of a decreasing age sigmoid and an increasing
// weight sigmoid. It is 0 for weight 0 and always below 1.
func Fitness(age int, weight float64, p *AnimalParams) float64 {
	if weight <= 0 {
		return 0
	}
	ageTerm := 1 / (1 + math.Exp(p.PhiAge*(float64(age)-p.AHalf)))
	weightTerm := 1 / (1 + math.Exp(-p.PhiWeight*(weight-p.WHalf)))
	return math.Min(ageTerm*weightTerm, maxFitness)
}

// Refresh recomputes fitness from the current age and weight.
func (a *Animal) Refresh(p *AnimalParams) {
	a.Fitness = Fitness(a.Age, a.Weight, p)
}

// FeedingGain adds beta*amount to the weight.
func (a *Animal) FeedingGain(p *AnimalParams, amount float64) {
	a.Weight += p.Beta * amount
	a.checkWeight("feeding")
	a.Refresh(p)
}

// BirthThreshold is the minimum weight for procreation: zeta*(w_birth+sigma_birth).
func (p *AnimalParams) BirthThreshold() float64 {
	return p.Zeta * (p.WBirth + p.SigmaBirth)
}

// ProcreationProbability returns min(1, gamma*fitness*(n-1)) where n is the
// number of same-species animals in the cell, or 0 below the birth threshold.
func (a *Animal) ProcreationProbability(p *AnimalParams, n int) float64 {
	if n < 2 || a.Weight < p.BirthThreshold() {
		return 0
	}
	return math.Min(1, p.Gamma*a.Fitness*float64(n-1))
}

// GiveBirth charges the mother xi*newbornWeight if she keeps a positive weight
// afterwards. It reports whether the birth happens; on false nothing changes.
func (a *Animal) GiveBirth(p *AnimalParams, newbornWeight float64) bool {
	if newbornWeight <= 0 {
		return false
	}
	loss := p.Xi * newbornWeight
	if a.Weight-loss <= 0 {
		return false
	}
	a.Weight -= loss
	a.Refresh(p)
	return true
}

// MigrationProbability returns mu*fitness.
func (a *Animal) MigrationProbability(p *AnimalParams) float64 {
	return p.Mu * a.Fitness
}

// DeathProbability returns 1 for weight 0, otherwise omega*(1-fitness).
func (a *Animal) DeathProbability(p *AnimalParams) float64 {
	if a.Weight <= 0 {
		return 1
	}
	return p.Omega * (1 - a.Fitness)
}

// AgeOneYear increments the age and ends the newborn period.
func (a *Animal) AgeOneYear(p *AnimalParams) {
	a.Age++
	a.Newborn = false
	a.Refresh(p)
}

// LoseWeightAnnual removes eta*weight.
func (a *Animal) LoseWeightAnnual(p *AnimalParams) {
	a.Weight -= p.Eta * a.Weight
	a.checkWeight("annual weight loss")
	a.Refresh(p)
}

// checkWeight aborts on a negative or NaN weight: continuing would corrupt results.
func (a *Animal) checkWeight(phase string) {
	if a.Weight < 0 || math.IsNaN(a.Weight) {
		panic(fmt.Sprintf("components: %s weight %v after %s", a.Species, a.Weight, phase))
	}
}
