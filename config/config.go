// Package config provides configuration loading and the parameter registry for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/biosim/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Birth weight distributions accepted by simulation.birth_weight.
const (
	BirthWeightNormal    = "normal"
	BirthWeightLogNormal = "lognormal"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Island     IslandConfig     `yaml:"island"`
	Species    SpeciesConfig    `yaml:"species"`
	Landscape  LandscapeConfig  `yaml:"landscape"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// SimulationConfig holds run-level settings.
type SimulationConfig struct {
	Seed        int64  `yaml:"seed"`
	Years       int    `yaml:"years"`
	LogEvery    int    `yaml:"log_every"`    // Years between slog stats lines (0 = never)
	BirthWeight string `yaml:"birth_weight"` // normal | lognormal
}

// IslandConfig holds the terrain map and the animals placed on it.
type IslandConfig struct {
	Map           string                       `yaml:"map"`
	Population    []components.PopulationGroup `yaml:"population"`
	Introductions []IntroductionConfig         `yaml:"introductions"`
}

// IntroductionConfig adds population groups right before the given year is simulated.
// Year 0 is the first simulated year.
type IntroductionConfig struct {
	Year       int                          `yaml:"year"`
	Population []components.PopulationGroup `yaml:"population"`
}

// SpeciesConfig holds the per-species parameter tables.
type SpeciesConfig struct {
	Herbivore components.AnimalParams `yaml:"herbivore"`
	Carnivore components.AnimalParams `yaml:"carnivore"`
}

// LandscapeConfig holds the fodder tables for the fodder-bearing terrains.
type LandscapeConfig struct {
	Lowland  components.LandscapeParams `yaml:"lowland"`
	Highland components.LandscapeParams `yaml:"highland"`
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	CellSnapshotEvery int              `yaml:"cell_snapshot_every"` // Years between cells.csv snapshots (0 = never)
	Histograms        HistogramsConfig `yaml:"histograms"`
}

// HistogramsConfig holds the bin layout per traced trait.
type HistogramsConfig struct {
	Age     HistogramSpec `yaml:"age"`
	Weight  HistogramSpec `yaml:"weight"`
	Fitness HistogramSpec `yaml:"fitness"`
}

// HistogramSpec describes bins [0, Max) of width Delta.
type HistogramSpec struct {
	Max   float64 `yaml:"max"`
	Delta float64 `yaml:"delta"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be caught by the registry or the island.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Simulation.BirthWeight) {
	case BirthWeightNormal, BirthWeightLogNormal:
	default:
		return fmt.Errorf("simulation.birth_weight: %q is not one of %s, %s",
			c.Simulation.BirthWeight, BirthWeightNormal, BirthWeightLogNormal)
	}
	if c.Simulation.Years < 0 {
		return fmt.Errorf("simulation.years: must be non-negative, got %d", c.Simulation.Years)
	}
	if c.Simulation.LogEvery < 0 || c.Telemetry.CellSnapshotEvery < 0 {
		return fmt.Errorf("intervals must be non-negative")
	}
	for i, intro := range c.Island.Introductions {
		if intro.Year < 0 {
			return fmt.Errorf("island.introductions[%d]: year must be non-negative, got %d", i, intro.Year)
		}
	}
	for name, h := range map[string]HistogramSpec{
		"age": c.Telemetry.Histograms.Age, "weight": c.Telemetry.Histograms.Weight, "fitness": c.Telemetry.Histograms.Fitness,
	} {
		if h.Max <= 0 || h.Delta <= 0 {
			return fmt.Errorf("telemetry.histograms.%s: max and delta must be positive", name)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
