package telemetry

import "github.com/pthm-cable/biosim/components"

// Census is the end-of-year state the collector summarises.
type Census struct {
	Counts  [components.NumSpecies]int
	Ages    [components.NumSpecies][]float64
	Weights [components.NumSpecies][]float64
	Fitness [components.NumSpecies][]float64
	Fodder  float64
}

// Add records one living animal.
func (c *Census) Add(a *components.Animal) {
	s := a.Species
	c.Counts[s]++
	c.Ages[s] = append(c.Ages[s], float64(a.Age))
	c.Weights[s] = append(c.Weights[s], a.Weight)
	c.Fitness[s] = append(c.Fitness[s], a.Fitness)
}

// Collector accumulates events during a year and produces YearStats.
type Collector struct {
	births     [components.NumSpecies]int
	deaths     [components.NumSpecies]int
	migrations [components.NumSpecies]int
	kills      int
	blocked    int
	eaten      float64
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordBirths records n births of species s.
func (c *Collector) RecordBirths(s components.Species, n int) {
	c.births[s] += n
}

// RecordDeaths records n deaths of species s in the death phase.
func (c *Collector) RecordDeaths(s components.Species, n int) {
	c.deaths[s] += n
}

// RecordKills records herbivores killed by carnivores.
func (c *Collector) RecordKills(n int) {
	c.kills += n
}

// RecordMigration records an animal that moved to another cell.
func (c *Collector) RecordMigration(s components.Species) {
	c.migrations[s]++
}

// RecordBlocked records a migration attempt towards impassable terrain.
func (c *Collector) RecordBlocked() {
	c.blocked++
}

// RecordGrazing records fodder eaten by herbivores.
func (c *Collector) RecordGrazing(amount float64) {
	c.eaten += amount
}

// Flush produces the YearStats for year and resets counters for the next year.
func (c *Collector) Flush(year int, census Census) YearStats {
	h, k := components.Herbivore, components.Carnivore

	hAge := ComputeTraitStats(census.Ages[h])
	hWeight := ComputeTraitStats(census.Weights[h])
	hFit := ComputeTraitStats(census.Fitness[h])
	cAge := ComputeTraitStats(census.Ages[k])
	cWeight := ComputeTraitStats(census.Weights[k])
	cFit := ComputeTraitStats(census.Fitness[k])

	stats := YearStats{
		Year:       year,
		Herbivores: census.Counts[h],
		Carnivores: census.Counts[k],

		HerbivoreBirths:     c.births[h],
		CarnivoreBirths:     c.births[k],
		HerbivoreDeaths:     c.deaths[h],
		CarnivoreDeaths:     c.deaths[k],
		Kills:               c.kills,
		HerbivoreMigrations: c.migrations[h],
		CarnivoreMigrations: c.migrations[k],
		BlockedMoves:        c.blocked,

		FodderEaten: c.eaten,
		FodderLeft:  census.Fodder,

		HerbAgeMean:     hAge.Mean,
		HerbWeightMean:  hWeight.Mean,
		HerbWeightStd:   hWeight.Std,
		HerbWeightP10:   hWeight.P10,
		HerbWeightP50:   hWeight.P50,
		HerbWeightP90:   hWeight.P90,
		HerbFitnessMean: hFit.Mean,
		HerbFitnessP50:  hFit.P50,

		CarnAgeMean:     cAge.Mean,
		CarnWeightMean:  cWeight.Mean,
		CarnWeightStd:   cWeight.Std,
		CarnWeightP10:   cWeight.P10,
		CarnWeightP50:   cWeight.P50,
		CarnWeightP90:   cWeight.P90,
		CarnFitnessMean: cFit.Mean,
		CarnFitnessP50:  cFit.P50,
	}

	*c = Collector{}
	return stats
}
