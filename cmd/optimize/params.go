// Package main provides CMA-ES optimization for island species parameters.
package main

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string             // Human-readable name
	Species components.Species // Owning species
	Key     string             // Override key in the species table
	Min     float64            // Lower bound
	Max     float64            // Upper bound
	Default float64            // Default value
}

// Path returns the config path of the parameter, e.g. "species.carnivore.F".
func (s ParamSpec) Path() string {
	return fmt.Sprintf("species.%s.%s", strings.ToLower(s.Species.String()), s.Key)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters with
// defaults taken from base. Birth weights and fitness curves stay fixed.
func NewParamVector(base *config.Registry) *ParamVector {
	h, c := components.Herbivore, components.Carnivore
	specs := []ParamSpec{
		// Herbivore
		{Name: "herb_gamma", Species: h, Key: "gamma", Min: 0.05, Max: 0.8},
		{Name: "herb_omega", Species: h, Key: "omega", Min: 0.1, Max: 0.9},
		{Name: "herb_mu", Species: h, Key: "mu", Min: 0.0, Max: 0.8},
		{Name: "herb_F", Species: h, Key: "F", Min: 2.0, Max: 30.0},
		{Name: "herb_eta", Species: h, Key: "eta", Min: 0.01, Max: 0.3},
		// Carnivore
		{Name: "carn_gamma", Species: c, Key: "gamma", Min: 0.1, Max: 1.5},
		{Name: "carn_omega", Species: c, Key: "omega", Min: 0.1, Max: 1.5},
		{Name: "carn_mu", Species: c, Key: "mu", Min: 0.0, Max: 0.8},
		{Name: "carn_F", Species: c, Key: "F", Min: 10.0, Max: 100.0},
		{Name: "carn_eta", Species: c, Key: "eta", Min: 0.02, Max: 0.3},
		{Name: "carn_beta", Species: c, Key: "beta", Min: 0.3, Max: 1.0},
		{Name: "carn_delta_phi_max", Species: c, Key: "DeltaPhiMax", Min: 1.0, Max: 20.0},
	}
	for i := range specs {
		v, _ := base.Animal(specs[i].Species).Get(specs[i].Key)
		specs[i].Default = min(max(v, specs[i].Min), specs[i].Max)
	}
	return &ParamVector{Specs: specs}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Overrides groups clamped values by species name, ready for
// Registry.SetAnimalParameters.
func (pv *ParamVector) Overrides(values []float64) map[string]map[string]float64 {
	clamped := pv.Clamp(values)
	out := make(map[string]map[string]float64)
	for i, spec := range pv.Specs {
		name := spec.Species.String()
		if out[name] == nil {
			out[name] = make(map[string]float64)
		}
		out[name][spec.Key] = clamped[i]
	}
	return out
}

// ApplyToRegistry applies parameter values to reg. Species are applied in
// a fixed order so errors are reproducible.
func (pv *ParamVector) ApplyToRegistry(reg *config.Registry, values []float64) error {
	overrides := pv.Overrides(values)
	for _, s := range components.AllSpecies() {
		o, ok := overrides[s.String()]
		if !ok {
			continue
		}
		if err := reg.SetAnimalParameters(s.String(), o); err != nil {
			return err
		}
	}
	return nil
}

// ApplyToConfig applies parameter values to the species section of cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	reg, err := config.NewRegistry(cfg)
	if err != nil {
		return err
	}
	if err := pv.ApplyToRegistry(reg, values); err != nil {
		return err
	}
	reg.ApplyTo(cfg)
	return nil
}

// ExtractFromRegistry reads the current parameter values from reg.
func (pv *ParamVector) ExtractFromRegistry(reg *config.Registry) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i], _ = reg.Animal(spec.Species).Get(spec.Key)
	}
	return v
}
