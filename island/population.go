package island

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/systems"
)

// placement is one validated animal waiting to be put on the island.
// A nil weight is drawn from the birth-weight distribution when placed.
type placement struct {
	cell    *systems.Cell
	species components.Species
	age     int
	weight  *float64
}

// introduction is a validated population waiting for its year.
type introduction struct {
	year int
	plan []placement
}

// plan validates every group without touching the island.
func (isl *Island) plan(groups []components.PopulationGroup) ([]placement, error) {
	var out []placement
	for gi, g := range groups {
		cell, err := isl.Cell(g.Loc)
		if err != nil {
			return nil, fmt.Errorf("population group %d: %w", gi+1, err)
		}
		for ai, spec := range g.Pop {
			s, err := components.ParseSpecies(spec.Species)
			if err != nil {
				if hint := config.Suggest(spec.Species, components.SpeciesNames()); hint != "" {
					err = fmt.Errorf("%w (did you mean %q?)", err, hint)
				}
				return nil, fmt.Errorf("population group %d at %s, animal %d: %w", gi+1, g.Loc, ai+1, err)
			}
			if spec.Count < 0 {
				return nil, fmt.Errorf("population group %d at %s, animal %d: %w: count %d is negative",
					gi+1, g.Loc, ai+1, components.ErrInvalidAnimal, spec.Count)
			}
			// Validate with a placeholder weight when none is given.
			w := 1.0
			if spec.Weight != nil {
				w = *spec.Weight
			}
			if _, err := components.NewAnimal(s, spec.Age, w, isl.params.Animal(s)); err != nil {
				return nil, fmt.Errorf("population group %d at %s, animal %d: %w", gi+1, g.Loc, ai+1, err)
			}
			for n := 0; n < spec.N(); n++ {
				out = append(out, placement{cell: cell, species: s, age: spec.Age, weight: spec.Weight})
			}
		}
	}
	return out, nil
}

// place puts validated animals on the island.
func (isl *Island) place(plan []placement) {
	for _, p := range plan {
		params := isl.params.Animal(p.species)
		var w float64
		if p.weight != nil {
			w = *p.weight
		} else {
			w = isl.drawBirthWeight(params)
		}
		a, err := components.NewAnimal(p.species, p.age, w, params)
		if err != nil {
			panic(fmt.Sprintf("island: validated placement rejected: %v", err))
		}
		if _, err := p.cell.Place(a); err != nil {
			panic(fmt.Sprintf("island: validated placement rejected: %v", err))
		}
	}
}

// drawBirthWeight draws until the weight is positive and finite.
func (isl *Island) drawBirthWeight(p *components.AnimalParams) float64 {
	for {
		w := isl.birthWeight(isl.rng, p)
		if w > 0 && !math.IsInf(w, 0) {
			return w
		}
	}
}

// AddPopulation places new animals in the named cells. Every group is
// validated first: on error nothing is added.
func (isl *Island) AddPopulation(groups []components.PopulationGroup) error {
	plan, err := isl.plan(groups)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		return nil
	}
	isl.place(plan)
	slog.Debug("population_added",
		"year", isl.year,
		"groups", len(groups),
		"animals", len(plan),
		"total", isl.herd.Len(),
	)
	return nil
}

// Schedule validates groups now and adds them right before the given year is
// simulated, i.e. when Year() equals year. Years already simulated are rejected.
func (isl *Island) Schedule(year int, groups []components.PopulationGroup) error {
	if year < isl.year {
		return fmt.Errorf("cannot schedule population for year %d: already at year %d", year, isl.year)
	}
	plan, err := isl.plan(groups)
	if err != nil {
		return fmt.Errorf("introduction at year %d: %w", year, err)
	}
	isl.pending = append(isl.pending, introduction{year: year, plan: plan})
	sort.SliceStable(isl.pending, func(i, j int) bool { return isl.pending[i].year < isl.pending[j].year })
	return nil
}

// applyIntroductions places every scheduled population that is due.
func (isl *Island) applyIntroductions() {
	for len(isl.pending) > 0 && isl.pending[0].year <= isl.year {
		intro := isl.pending[0]
		isl.pending = isl.pending[1:]
		isl.place(intro.plan)
		slog.Info("population_introduced",
			"year", isl.year,
			"animals", len(intro.plan),
			"total", isl.herd.Len(),
		)
	}
}
