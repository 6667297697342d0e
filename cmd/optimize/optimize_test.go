package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/telemetry"
)

// ---------- params ----------

func TestParamVector_DefaultsFromRegistry(t *testing.T) {
	reg := config.DefaultRegistry()
	pv := NewParamVector(reg)

	for i, spec := range pv.Specs {
		want, ok := reg.Animal(spec.Species).Get(spec.Key)
		if !ok {
			t.Fatalf("%s: unknown key %q", spec.Name, spec.Key)
		}
		want = math.Min(math.Max(want, spec.Min), spec.Max)
		if got := pv.DefaultVector()[i]; got != want {
			t.Errorf("%s default = %v, want %v", spec.Name, got, want)
		}
	}
}

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector(config.DefaultRegistry())
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVector_Clamp(t *testing.T) {
	pv := NewParamVector(config.DefaultRegistry())
	v := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		if i%2 == 0 {
			v[i] = spec.Min - 1
		} else {
			v[i] = spec.Max + 1
		}
	}
	c := pv.Clamp(v)
	for i, spec := range pv.Specs {
		want := spec.Max
		if i%2 == 0 {
			want = spec.Min
		}
		if c[i] != want {
			t.Errorf("%s clamped to %v, want %v", spec.Name, c[i], want)
		}
	}
}

func TestParamVector_ApplyToRegistry(t *testing.T) {
	base := config.DefaultRegistry()
	pv := NewParamVector(base)
	reg := base.Clone()

	values := pv.Denormalize(make([]float64, pv.Dim())) // every parameter at its minimum
	if err := pv.ApplyToRegistry(reg, values); err != nil {
		t.Fatalf("ApplyToRegistry: %v", err)
	}
	got := pv.ExtractFromRegistry(reg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Min {
			t.Errorf("%s = %v, want %v", spec.Name, got[i], spec.Min)
		}
	}
	if base.Animal(components.Carnivore).F != components.DefaultAnimalParams(components.Carnivore).F {
		t.Error("base registry modified through clone")
	}
}

func TestParamVector_ApplyToConfig(t *testing.T) {
	cfg := config.Default()
	pv := NewParamVector(config.DefaultRegistry())
	values := pv.DefaultVector()
	for i, spec := range pv.Specs {
		if spec.Name == "carn_F" {
			values[i] = 42
		}
	}
	if err := pv.ApplyToConfig(cfg, values); err != nil {
		t.Fatalf("ApplyToConfig: %v", err)
	}
	if cfg.Species.Carnivore.F != 42 {
		t.Errorf("carnivore F = %v, want 42", cfg.Species.Carnivore.F)
	}
}

func TestParamSpec_Path(t *testing.T) {
	spec := ParamSpec{Species: components.Carnivore, Key: "DeltaPhiMax"}
	if got := spec.Path(); got != "species.carnivore.DeltaPhiMax" {
		t.Errorf("Path() = %q", got)
	}
}

// ---------- fitness ----------

func steadyYears(n, herb, carn, kills int) []telemetry.YearStats {
	out := make([]telemetry.YearStats, n)
	for i := range out {
		out[i] = telemetry.YearStats{Year: i + 1, Herbivores: herb, Carnivores: carn, Kills: kills}
	}
	return out
}

func TestComputeQuality(t *testing.T) {
	tests := []struct {
		name  string
		years []telemetry.YearStats
		min   float64
		max   float64
	}{
		{"empty", nil, 0, 0},
		{"herbivores only", steadyYears(50, 200, 0, 0), 0, 0},
		{"warmup only", steadyYears(qualityWarmupYears, 100, 20, 40), 0, 0},
		// ratio 5, zero variance, 2 kills per carnivore
		{"ideal steady state", steadyYears(50, 100, 20, 40), 0.85, 1},
		{"skewed ratio", steadyYears(50, 1000, 4, 0), 0.3, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := computeQuality(tt.years)
			if q < tt.min || q > tt.max {
				t.Errorf("quality = %v, want in [%v, %v]", q, tt.min, tt.max)
			}
		})
	}
}

func TestComputeFitness(t *testing.T) {
	r := &runResult{survivalYears: 100}
	if got := computeFitness(r, 1); math.Abs(got-(-120)) > 1e-9 {
		t.Errorf("fitness = %v, want -120", got)
	}
	r.err = errExtinct
	if got := computeFitness(r, 1); got != 0 {
		t.Errorf("failed run fitness = %v, want 0", got)
	}
}

func TestCV(t *testing.T) {
	if got := cv([]float64{5, 5, 5}); got != 0 {
		t.Errorf("cv of constant = %v", got)
	}
	if got := cv([]float64{1, 3}); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("cv = %v, want 0.5", got)
	}
	if got := cv(nil); got != 0 {
		t.Errorf("cv(nil) = %v", got)
	}
}

func TestEvaluator_RunSimulation(t *testing.T) {
	cfg := config.Default()
	cfg.Island.Introductions = cfg.Island.Introductions[:0]
	cfg.Island.Population = append(cfg.Island.Population, components.PopulationGroup{
		Loc: components.Loc(5, 7),
		Pop: []components.AnimalSpec{components.Spec("Carnivore", 5, 20).Times(20)},
	})
	reg, err := config.NewRegistry(cfg)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	pv := NewParamVector(reg)
	fe := NewFitnessEvaluator(pv, 20, []int64{1, 2}, cfg, reg)

	fitness := fe.Evaluate(pv.DefaultVector())
	if fitness > 0 {
		t.Errorf("fitness = %v, want <= 0", fitness)
	}
	if fitness < -20*1.2 {
		t.Errorf("fitness = %v below the survival cap", fitness)
	}
	if len(fe.BestStats()) == 0 {
		t.Error("best stats not recorded")
	}
}

// ---------- main helpers ----------

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m00s"},
		{65 * time.Second, "1m05s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
		{1500 * time.Millisecond, "0m02s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestEvalLog(t *testing.T) {
	pv := NewParamVector(config.DefaultRegistry())
	path := filepath.Join(t.TempDir(), "log.csv")

	l, err := newEvalLog(path, pv)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.record(1, -120, 0.5, pv.DefaultVector()); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "eval,fitness,quality,") {
		t.Errorf("header = %q", lines[0])
	}
	if got := len(strings.Split(lines[1], ",")); got != 3+pv.Dim() {
		t.Errorf("row has %d columns, want %d", got, 3+pv.Dim())
	}
	if !strings.HasPrefix(lines[1], "1,-120.000000,0.5000,") {
		t.Errorf("row = %q", lines[1])
	}
}
