package island

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
	"github.com/pthm-cable/biosim/telemetry"
)

// SimulateYear runs one annual cycle. Each phase completes over the whole
// grid before the next begins:
//
//  1. fodder regrowth
//  2. herbivore feeding
//  3. carnivore feeding
//  4. procreation, herbivores then carnivores
//  5. migration, intents for every cell first, then one relocation pass
//  6. ageing and weight loss
//  7. death
//
// Populations scheduled for this year are added first. The registry rejects
// changes until the year is over.
func (isl *Island) SimulateYear() telemetry.YearStats {
	isl.applyIntroductions()

	isl.params.Freeze()
	defer isl.params.Thaw()

	isl.perf.StartYear()
	isl.herd.RefreshFitness(isl.params.Animal)

	isl.perf.StartPhase(telemetry.PhaseFodder)
	isl.eachCell(func(c *systems.Cell) { c.GrowFodder() })

	isl.perf.StartPhase(telemetry.PhaseFeeding)
	isl.eachPassable(func(c *systems.Cell) {
		isl.collector.RecordGrazing(c.FeedHerbivores())
	})
	isl.eachPassable(func(c *systems.Cell) {
		isl.collector.RecordKills(c.FeedCarnivores(isl.rng, isl.curve))
	})
	isl.herd.Flush()

	isl.perf.StartPhase(telemetry.PhaseProcreation)
	for _, s := range components.AllSpecies() {
		isl.eachPassable(func(c *systems.Cell) {
			isl.collector.RecordBirths(s, c.Procreate(s, isl.rng, isl.birthWeight))
		})
	}

	isl.perf.StartPhase(telemetry.PhaseMigration)
	isl.migrate()

	isl.perf.StartPhase(telemetry.PhaseAgeing)
	isl.eachPassable(func(c *systems.Cell) { c.AgeAndLoseWeight() })

	isl.perf.StartPhase(telemetry.PhaseDeath)
	isl.eachPassable(func(c *systems.Cell) {
		deaths := c.RemoveDead(isl.rng)
		for s, n := range deaths {
			isl.collector.RecordDeaths(components.Species(s), n)
		}
	})
	isl.herd.Flush()

	isl.year++

	isl.perf.StartPhase(telemetry.PhaseTelemetry)
	stats := isl.collector.Flush(isl.year, isl.Census())
	isl.perf.EndYear()
	return stats
}

// migrate computes every intent from the pre-migration state, then applies
// them in one pass. An animal moves at most once; moves towards water are dropped.
func (isl *Island) migrate() {
	var intents []systems.Intent
	isl.eachPassable(func(c *systems.Cell) {
		intents = append(intents, c.PrepareMigrants(isl.rng)...)
	})

	for _, in := range intents {
		dst := isl.cellAt(in.To)
		if dst == nil || !dst.Passable() {
			isl.collector.RecordBlocked()
			continue
		}
		src := isl.cellAt(in.From)
		if !src.Extract(in.Entity, in.Species) {
			continue
		}
		dst.Insert(in.Entity, in.Species)
		isl.collector.RecordMigration(in.Species)
	}
}

// Simulate runs the given number of years, calling visit after each one.
// It stops at the first error returned by visit.
func (isl *Island) Simulate(years int, visit func(stats telemetry.YearStats) error) error {
	for i := 0; i < years; i++ {
		stats := isl.SimulateYear()
		if visit == nil {
			continue
		}
		if err := visit(stats); err != nil {
			return err
		}
	}
	return nil
}
