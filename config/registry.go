package config

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/biosim/components"
)

// ErrRegistryLocked is returned when parameters are changed while a year is being simulated.
var ErrRegistryLocked = errors.New("parameter registry is locked during a simulated year")

// Registry holds the per-species and per-terrain constants shared by every
// animal and cell of an island. Overrides apply to all existing and future
// instances from the next phase that reads them.
type Registry struct {
	animals    [components.NumSpecies]components.AnimalParams
	landscapes [components.NumTerrains]components.LandscapeParams
	frozen     bool
}

// NewRegistry builds a registry from the species and landscape sections of cfg.
func NewRegistry(cfg *Config) (*Registry, error) {
	r := &Registry{}
	r.animals[components.Herbivore] = cfg.Species.Herbivore
	r.animals[components.Carnivore] = cfg.Species.Carnivore
	r.landscapes[components.Lowland] = cfg.Landscape.Lowland
	r.landscapes[components.Highland] = cfg.Landscape.Highland

	for _, s := range components.AllSpecies() {
		if err := r.animals[s].Validate(s); err != nil {
			return nil, fmt.Errorf("species.%s: %w", s, err)
		}
	}
	for t := components.Terrain(0); t < components.NumTerrains; t++ {
		if err := r.landscapes[t].Validate(t); err != nil {
			return nil, fmt.Errorf("landscape.%s: %w", t, err)
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry holding the reference constants.
func DefaultRegistry() *Registry {
	r := &Registry{}
	for _, s := range components.AllSpecies() {
		r.animals[s] = components.DefaultAnimalParams(s)
	}
	for t := components.Terrain(0); t < components.NumTerrains; t++ {
		r.landscapes[t] = components.DefaultLandscapeParams(t)
	}
	return r
}

// Animal returns the live parameter table of a species.
// Callers must treat it as read-only; use SetAnimalParameters to change it.
func (r *Registry) Animal(s components.Species) *components.AnimalParams {
	return &r.animals[s]
}

// Landscape returns the live parameter table of a terrain.
func (r *Registry) Landscape(t components.Terrain) *components.LandscapeParams {
	return &r.landscapes[t]
}

// SetAnimalParameters validates and applies overrides for the named species.
// Either every override is applied or none is.
func (r *Registry) SetAnimalParameters(species string, overrides map[string]float64) error {
	if r.frozen {
		return ErrRegistryLocked
	}
	s, err := components.ParseSpecies(species)
	if err != nil {
		return withSuggestion(err, species, components.SpeciesNames())
	}
	updated, err := r.animals[s].Apply(s, overrides)
	if err != nil {
		return withKeySuggestion(err, overrides, components.AnimalParamKeys(s))
	}
	r.animals[s] = updated
	return nil
}

// SetLandscapeParameters validates and applies overrides for the named
// terrain, given as a map code ("L") or a name ("lowland").
func (r *Registry) SetLandscapeParameters(terrain string, overrides map[string]float64) error {
	if r.frozen {
		return ErrRegistryLocked
	}
	t, err := components.ParseTerrain(terrain)
	if err != nil {
		return withSuggestion(err, terrain, components.TerrainNames())
	}
	updated, err := r.landscapes[t].Apply(t, overrides)
	if err != nil {
		return withKeySuggestion(err, overrides, components.LandscapeParamKeys(t))
	}
	r.landscapes[t] = updated
	return nil
}

// Freeze rejects further changes until Thaw. The island freezes the registry
// for the duration of each simulated year.
func (r *Registry) Freeze() { r.frozen = true }

// Thaw re-enables changes.
func (r *Registry) Thaw() { r.frozen = false }

// Frozen reports whether changes are currently rejected.
func (r *Registry) Frozen() bool { return r.frozen }

// Clone returns a deep copy that accepts changes.
func (r *Registry) Clone() *Registry {
	return &Registry{animals: r.animals, landscapes: r.landscapes}
}

// ApplyTo writes the current tables back into cfg, e.g. before WriteYAML.
func (r *Registry) ApplyTo(cfg *Config) {
	cfg.Species.Herbivore = r.animals[components.Herbivore]
	cfg.Species.Carnivore = r.animals[components.Carnivore]
	cfg.Landscape.Lowland = r.landscapes[components.Lowland]
	cfg.Landscape.Highland = r.landscapes[components.Highland]
}
