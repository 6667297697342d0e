package components

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownParameter is returned for override keys a table does not define.
var ErrUnknownParameter = errors.New("unknown parameter")

// ErrParameterDomain is returned when a parameter value is out of its domain.
var ErrParameterDomain = errors.New("parameter out of domain")

// AnimalParams holds the per-species constants of the animal model.
// Field tags use the parameter keys accepted by overrides.
type AnimalParams struct {
	WBirth      float64 `yaml:"w_birth"`     // mean birth weight
	SigmaBirth  float64 `yaml:"sigma_birth"` // birth weight standard deviation
	Beta        float64 `yaml:"beta"`        // growth efficiency per unit eaten
	Eta         float64 `yaml:"eta"`         // annual weight loss fraction
	AHalf       float64 `yaml:"a_half"`      // age fitness midpoint
	PhiAge      float64 `yaml:"phi_age"`     // age fitness steepness
	WHalf       float64 `yaml:"w_half"`      // weight fitness midpoint
	PhiWeight   float64 `yaml:"phi_weight"`  // weight fitness steepness
	Mu          float64 `yaml:"mu"`          // migration probability scale
	Gamma       float64 `yaml:"gamma"`       // procreation probability scale
	Zeta        float64 `yaml:"zeta"`        // procreation weight threshold factor
	Xi          float64 `yaml:"xi"`          // mother weight loss per unit newborn weight
	Omega       float64 `yaml:"omega"`       // death probability scale
	F           float64 `yaml:"F"`           // appetite
	DeltaPhiMax float64 `yaml:"DeltaPhiMax,omitempty"`
}

// DefaultAnimalParams returns the reference constants for a species.
func DefaultAnimalParams(s Species) AnimalParams {
	if s == Carnivore {
		return AnimalParams{
			WBirth: 6.0, SigmaBirth: 1.0, Beta: 0.75, Eta: 0.125,
			AHalf: 40.0, PhiAge: 0.3, WHalf: 4.0, PhiWeight: 0.4,
			Mu: 0.4, Gamma: 0.8, Zeta: 3.5, Xi: 1.1, Omega: 0.8, F: 50.0,
			DeltaPhiMax: 10.0,
		}
	}
	return AnimalParams{
		WBirth: 8.0, SigmaBirth: 1.5, Beta: 0.9, Eta: 0.05,
		AHalf: 40.0, PhiAge: 0.6, WHalf: 10.0, PhiWeight: 0.1,
		Mu: 0.25, Gamma: 0.2, Zeta: 3.5, Xi: 1.2, Omega: 0.4, F: 10.0,
	}
}

// animalKeys maps override keys to fields. DeltaPhiMax is carnivore-only.
var animalKeys = map[string]func(*AnimalParams) *float64{
	"w_birth":     func(p *AnimalParams) *float64 { return &p.WBirth },
	"sigma_birth": func(p *AnimalParams) *float64 { return &p.SigmaBirth },
	"beta":        func(p *AnimalParams) *float64 { return &p.Beta },
	"eta":         func(p *AnimalParams) *float64 { return &p.Eta },
	"a_half":      func(p *AnimalParams) *float64 { return &p.AHalf },
	"phi_age":     func(p *AnimalParams) *float64 { return &p.PhiAge },
	"w_half":      func(p *AnimalParams) *float64 { return &p.WHalf },
	"phi_weight":  func(p *AnimalParams) *float64 { return &p.PhiWeight },
	"mu":          func(p *AnimalParams) *float64 { return &p.Mu },
	"gamma":       func(p *AnimalParams) *float64 { return &p.Gamma },
	"zeta":        func(p *AnimalParams) *float64 { return &p.Zeta },
	"xi":          func(p *AnimalParams) *float64 { return &p.Xi },
	"omega":       func(p *AnimalParams) *float64 { return &p.Omega },
	"F":           func(p *AnimalParams) *float64 { return &p.F },
	"DeltaPhiMax": func(p *AnimalParams) *float64 { return &p.DeltaPhiMax },
}

// AnimalParamKeys returns the sorted override keys valid for a species.
func AnimalParamKeys(s Species) []string {
	keys := make([]string, 0, len(animalKeys))
	for k := range animalKeys {
		if k == "DeltaPhiMax" && s != Carnivore {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under an override key.
func (p AnimalParams) Get(key string) (float64, bool) {
	field, ok := animalKeys[key]
	if !ok {
		return 0, false
	}
	return *field(&p), true
}

// Apply returns a copy of p with overrides applied and validated.
// p itself is never modified, so a rejected override leaves no trace.
func (p AnimalParams) Apply(s Species, overrides map[string]float64) (AnimalParams, error) {
	out := p
	for _, key := range sortedKeys(overrides) {
		field, ok := animalKeys[key]
		if !ok || (key == "DeltaPhiMax" && s != Carnivore) {
			return p, fmt.Errorf("%w: %q for %s", ErrUnknownParameter, key, s)
		}
		*field(&out) = overrides[key]
	}
	if err := out.Validate(s); err != nil {
		return p, err
	}
	return out, nil
}

// Validate checks every constant against its domain.
func (p AnimalParams) Validate(s Species) error {
	for _, key := range AnimalParamKeys(s) {
		v := *animalKeys[key](&p)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s.%s must be finite, got %v", ErrParameterDomain, s, key, v)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s.%s must be non-negative, got %v", ErrParameterDomain, s, key, v)
		}
	}
	if p.WBirth == 0 {
		return fmt.Errorf("%w: %s.w_birth cannot be zero", ErrParameterDomain, s)
	}
	if p.Eta > 1 {
		return fmt.Errorf("%w: %s.eta must be in [0,1], got %v", ErrParameterDomain, s, p.Eta)
	}
	if s == Carnivore && p.DeltaPhiMax == 0 {
		return fmt.Errorf("%w: %s.DeltaPhiMax must be positive", ErrParameterDomain, s)
	}
	return nil
}

// LandscapeParams holds the per-terrain fodder constants.
type LandscapeParams struct {
	FMax  float64 `yaml:"f_max"` // fodder cap
	Alpha float64 `yaml:"alpha"` // fraction of the gap to f_max regrown each year
}

// DefaultLandscapeParams returns the reference constants for a terrain.
// Terrains without fodder get the zero value.
func DefaultLandscapeParams(t Terrain) LandscapeParams {
	switch t {
	case Lowland:
		return LandscapeParams{FMax: 800, Alpha: 1}
	case Highland:
		return LandscapeParams{FMax: 300, Alpha: 1}
	}
	return LandscapeParams{}
}

var landscapeKeys = map[string]func(*LandscapeParams) *float64{
	"f_max": func(p *LandscapeParams) *float64 { return &p.FMax },
	"alpha": func(p *LandscapeParams) *float64 { return &p.Alpha },
}

// LandscapeParamKeys returns the sorted override keys valid for a terrain.
// Terrains that bear no fodder accept none.
func LandscapeParamKeys(t Terrain) []string {
	if !t.BearsFodder() {
		return nil
	}
	return []string{"alpha", "f_max"}
}

// Apply returns a copy of p with overrides applied and validated.
func (p LandscapeParams) Apply(t Terrain, overrides map[string]float64) (LandscapeParams, error) {
	out := p
	for _, key := range sortedKeys(overrides) {
		field, ok := landscapeKeys[key]
		if !ok || !t.BearsFodder() {
			return p, fmt.Errorf("%w: %q for %s", ErrUnknownParameter, key, t)
		}
		*field(&out) = overrides[key]
	}
	if err := out.Validate(t); err != nil {
		return p, err
	}
	return out, nil
}

// Validate checks the fodder constants against their domain.
func (p LandscapeParams) Validate(t Terrain) error {
	if !t.BearsFodder() {
		if p != (LandscapeParams{}) {
			return fmt.Errorf("%w: %s bears no fodder", ErrParameterDomain, t)
		}
		return nil
	}
	if math.IsNaN(p.FMax) || math.IsInf(p.FMax, 0) || p.FMax < 0 {
		return fmt.Errorf("%w: %s.f_max must be finite and non-negative, got %v", ErrParameterDomain, t, p.FMax)
	}
	if math.IsNaN(p.Alpha) || p.Alpha < 0 || p.Alpha > 1 {
		return fmt.Errorf("%w: %s.alpha must be in [0,1], got %v", ErrParameterDomain, t, p.Alpha)
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
