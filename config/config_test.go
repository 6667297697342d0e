package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/biosim/components"
)

// ---------- loading ----------

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Years <= 0 {
		t.Errorf("years = %d", cfg.Simulation.Years)
	}
	if cfg.Species.Herbivore != components.DefaultAnimalParams(components.Herbivore) {
		t.Errorf("herbivore defaults differ from reference: %+v", cfg.Species.Herbivore)
	}
	if cfg.Species.Carnivore != components.DefaultAnimalParams(components.Carnivore) {
		t.Errorf("carnivore defaults differ from reference: %+v", cfg.Species.Carnivore)
	}
	if cfg.Landscape.Lowland != components.DefaultLandscapeParams(components.Lowland) {
		t.Errorf("lowland defaults = %+v", cfg.Landscape.Lowland)
	}
	if len(cfg.Island.Population) == 0 || len(cfg.Island.Introductions) == 0 {
		t.Error("default island has no animals")
	}
}

func TestLoad_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	overlay := `
simulation:
  seed: 7
  birth_weight: LogNormal
species:
  carnivore:
    F: 25
`
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Simulation.Seed)
	}
	if cfg.Species.Carnivore.F != 25 {
		t.Errorf("carnivore F = %v, want 25", cfg.Species.Carnivore.F)
	}
	// Fields absent from the overlay keep their defaults.
	if cfg.Species.Carnivore.Beta != 0.75 || cfg.Simulation.Years != 200 {
		t.Errorf("defaults lost: beta=%v years=%d", cfg.Species.Carnivore.Beta, cfg.Simulation.Years)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad birth weight", "simulation:\n  birth_weight: uniform\n", "birth_weight"},
		{"negative years", "simulation:\n  years: -1\n", "years"},
		{"negative interval", "telemetry:\n  cell_snapshot_every: -2\n", "intervals"},
		{"bad histogram", "telemetry:\n  histograms:\n    age: {max: 0, delta: 1}\n", "histograms.age"},
		{"negative introduction year", "island:\n  introductions:\n    - year: -3\n", "introductions"},
		{"bad yaml", "simulation: [\n", "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Seed = 99
	cfg.Species.Herbivore.Gamma = 0.33

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Simulation.Seed != 99 || back.Species.Herbivore.Gamma != 0.33 {
		t.Errorf("round trip lost values: seed=%d gamma=%v", back.Simulation.Seed, back.Species.Herbivore.Gamma)
	}
	if back.Island.Map != cfg.Island.Map {
		t.Error("map changed in round trip")
	}
	if back.Island.Population[0].Loc != cfg.Island.Population[0].Loc {
		t.Errorf("loc = %v, want %v", back.Island.Population[0].Loc, cfg.Island.Population[0].Loc)
	}
}

func TestCfg_PanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() did not panic")
		}
	}()
	Cfg()
}

// ---------- registry ----------

func TestNewRegistry_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Species.Herbivore.Eta = 2
	if _, err := NewRegistry(cfg); !errors.Is(err, components.ErrParameterDomain) {
		t.Errorf("err = %v, want ErrParameterDomain", err)
	}
}

func TestRegistry_SetAnimalParameters(t *testing.T) {
	tests := []struct {
		name      string
		species   string
		overrides map[string]float64
		wantErr   error
		hint      string
	}{
		{"valid", "Herbivore", map[string]float64{"F": 15}, nil, ""},
		{"lowercase species", "carnivore", map[string]float64{"DeltaPhiMax": 5}, nil, ""},
		{"typo species", "Herbivor", map[string]float64{"F": 15}, components.ErrUnknownSpecies, "Herbivore"},
		{"unknown species", "Dragon", map[string]float64{"F": 15}, components.ErrUnknownSpecies, ""},
		{"typo key", "Herbivore", map[string]float64{"gama": 0.3}, components.ErrUnknownParameter, "gamma"},
		{"out of domain", "Carnivore", map[string]float64{"eta": 1.2}, components.ErrParameterDomain, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRegistry()
			err := r.SetAnimalParameters(tt.species, tt.overrides)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.hint != "" && !strings.Contains(err.Error(), "did you mean \""+tt.hint+"\"") {
				t.Errorf("err = %v, want suggestion %q", err, tt.hint)
			}
		})
	}
}

func TestRegistry_OverrideIsAtomic(t *testing.T) {
	r := DefaultRegistry()
	err := r.SetAnimalParameters("Herbivore", map[string]float64{"gamma": 0.9, "zzz": 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := r.Animal(components.Herbivore).Gamma; got != 0.2 {
		t.Errorf("gamma = %v after rejected override, want 0.2", got)
	}
}

func TestRegistry_SetLandscapeParameters(t *testing.T) {
	r := DefaultRegistry()
	if err := r.SetLandscapeParameters("H", map[string]float64{"f_max": 200}); err != nil {
		t.Fatalf("code: %v", err)
	}
	if err := r.SetLandscapeParameters("lowland", map[string]float64{"alpha": 0.5}); err != nil {
		t.Fatalf("name: %v", err)
	}
	if r.Landscape(components.Highland).FMax != 200 || r.Landscape(components.Lowland).Alpha != 0.5 {
		t.Error("overrides not applied")
	}
	if err := r.SetLandscapeParameters("D", map[string]float64{"f_max": 10}); !errors.Is(err, components.ErrUnknownParameter) {
		t.Errorf("desert override: err = %v", err)
	}
	if err := r.SetLandscapeParameters("Lowlnd", nil); !errors.Is(err, components.ErrUnknownTerrain) {
		t.Errorf("typo terrain: err = %v", err)
	}
}

func TestRegistry_Freeze(t *testing.T) {
	r := DefaultRegistry()
	r.Freeze()
	if !r.Frozen() {
		t.Fatal("not frozen")
	}
	if err := r.SetAnimalParameters("Herbivore", map[string]float64{"F": 1}); !errors.Is(err, ErrRegistryLocked) {
		t.Errorf("animal: err = %v", err)
	}
	if err := r.SetLandscapeParameters("L", map[string]float64{"f_max": 1}); !errors.Is(err, ErrRegistryLocked) {
		t.Errorf("landscape: err = %v", err)
	}
	r.Thaw()
	if err := r.SetAnimalParameters("Herbivore", map[string]float64{"F": 1}); err != nil {
		t.Errorf("after thaw: %v", err)
	}
}

func TestRegistry_LiveTables(t *testing.T) {
	r := DefaultRegistry()
	p := r.Animal(components.Carnivore)
	if err := r.SetAnimalParameters("Carnivore", map[string]float64{"F": 70}); err != nil {
		t.Fatal(err)
	}
	if p.F != 70 {
		t.Errorf("held table sees F = %v, want 70", p.F)
	}
}

func TestRegistry_CloneAndApplyTo(t *testing.T) {
	r := DefaultRegistry()
	r.Freeze()
	c := r.Clone()
	if c.Frozen() {
		t.Error("clone is frozen")
	}
	if err := c.SetAnimalParameters("Herbivore", map[string]float64{"mu": 0.5}); err != nil {
		t.Fatal(err)
	}
	if r.Animal(components.Herbivore).Mu == 0.5 {
		t.Error("clone shares tables with original")
	}

	cfg := Default()
	c.ApplyTo(cfg)
	if cfg.Species.Herbivore.Mu != 0.5 {
		t.Errorf("ApplyTo: mu = %v", cfg.Species.Herbivore.Mu)
	}
}

// ---------- suggestions ----------

func TestSuggest(t *testing.T) {
	candidates := []string{"Herbivore", "Carnivore"}
	tests := []struct {
		in   string
		want string
	}{
		{"herbivor", "Herbivore"},
		{"Carnivor", "Carnivore"},
		{"carnivores", "Carnivore"},
		{"fish", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Suggest(tt.in, candidates); got != tt.want {
				t.Errorf("Suggest(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSuggest_ShortKeys(t *testing.T) {
	keys := components.AnimalParamKeys(components.Carnivore)
	if got := Suggest("mu ", keys); got != "mu" {
		t.Errorf("Suggest(mu) = %q", got)
	}
	if got := Suggest("DeltaPhiMx", keys); got != "DeltaPhiMax" {
		t.Errorf("Suggest(DeltaPhiMx) = %q", got)
	}
}
