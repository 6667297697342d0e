package components

import (
	"errors"
	"math"
	"testing"
)

// ---------- fitness ----------

func TestFitness(t *testing.T) {
	herb := DefaultAnimalParams(Herbivore)
	tests := []struct {
		name   string
		age    int
		weight float64
		want   float64
	}{
		{"zero weight", 5, 0, 0},
		{"weight midpoint, young", 0, 10, 0.5},
		{"age and weight midpoints", 40, 10, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fitness(tt.age, tt.weight, &herb)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Fitness(%d, %v) = %v, want %v", tt.age, tt.weight, got, tt.want)
			}
		})
	}
}

func TestFitness_BelowOne(t *testing.T) {
	p := DefaultAnimalParams(Carnivore)
	p.PhiAge, p.PhiWeight = 50, 50
	for _, w := range []float64{1e3, 1e6, math.MaxFloat64} {
		f := Fitness(0, w, &p)
		if f >= 1 || f < 0 {
			t.Errorf("Fitness(0, %v) = %v, want in [0,1)", w, f)
		}
	}
}

func TestNewAnimal(t *testing.T) {
	p := DefaultAnimalParams(Herbivore)
	tests := []struct {
		name    string
		s       Species
		age     int
		weight  float64
		wantErr error
	}{
		{"valid", Herbivore, 3, 12, nil},
		{"zero weight", Herbivore, 0, 0, nil},
		{"negative age", Herbivore, -1, 10, ErrInvalidAnimal},
		{"negative weight", Herbivore, 1, -0.1, ErrInvalidAnimal},
		{"NaN weight", Herbivore, 1, math.NaN(), ErrInvalidAnimal},
		{"bad species", Species(9), 1, 10, ErrUnknownSpecies},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnimal(tt.s, tt.age, tt.weight, &p)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Fitness != Fitness(tt.age, tt.weight, &p) {
				t.Errorf("fitness not initialised: %v", a.Fitness)
			}
		})
	}
}

// ---------- lifecycle ----------

func TestAnimal_FeedingGain(t *testing.T) {
	p := DefaultAnimalParams(Herbivore)
	a, _ := NewAnimal(Herbivore, 2, 10, &p)
	before := a.Fitness
	a.FeedingGain(&p, 10)
	if math.Abs(a.Weight-19) > 1e-12 {
		t.Errorf("weight = %v, want 19", a.Weight)
	}
	if a.Fitness <= before {
		t.Errorf("fitness did not increase: %v -> %v", before, a.Fitness)
	}
}

func TestAnimal_ProcreationProbability(t *testing.T) {
	p := DefaultAnimalParams(Herbivore) // threshold 3.5*(8+1.5) = 33.25
	heavy, _ := NewAnimal(Herbivore, 5, 40, &p)
	light, _ := NewAnimal(Herbivore, 5, 30, &p)

	tests := []struct {
		name string
		a    Animal
		n    int
		want float64
	}{
		{"alone", heavy, 1, 0},
		{"below threshold", light, 10, 0},
		{"pair", heavy, 2, p.Gamma * heavy.Fitness},
		{"crowded caps at 1", heavy, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.ProcreationProbability(&p, tt.n)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("p = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnimal_GiveBirth(t *testing.T) {
	p := DefaultAnimalParams(Herbivore)
	a, _ := NewAnimal(Herbivore, 5, 40, &p)

	if !a.GiveBirth(&p, 10) {
		t.Fatal("birth rejected")
	}
	if math.Abs(a.Weight-28) > 1e-12 {
		t.Errorf("weight = %v, want 28", a.Weight)
	}

	// 1.2*30 > 28: mother would not survive
	if a.GiveBirth(&p, 30) {
		t.Error("birth accepted that leaves no weight")
	}
	if math.Abs(a.Weight-28) > 1e-12 {
		t.Errorf("rejected birth changed weight to %v", a.Weight)
	}
	if a.GiveBirth(&p, 0) {
		t.Error("zero-weight newborn accepted")
	}
}

func TestAnimal_DeathProbability(t *testing.T) {
	p := DefaultAnimalParams(Carnivore)
	starved, _ := NewAnimal(Carnivore, 3, 0, &p)
	if got := starved.DeathProbability(&p); got != 1 {
		t.Errorf("zero weight death probability = %v, want 1", got)
	}
	fed, _ := NewAnimal(Carnivore, 3, 20, &p)
	want := p.Omega * (1 - fed.Fitness)
	if got := fed.DeathProbability(&p); math.Abs(got-want) > 1e-12 {
		t.Errorf("death probability = %v, want %v", got, want)
	}
}

func TestAnimal_AgeAndLoseWeight(t *testing.T) {
	p := DefaultAnimalParams(Carnivore)
	a, _ := NewAnimal(Carnivore, 0, 16, &p)
	a.Newborn = true

	a.AgeOneYear(&p)
	a.LoseWeightAnnual(&p)

	if a.Age != 1 || a.Newborn {
		t.Errorf("age = %d newborn = %v, want 1 false", a.Age, a.Newborn)
	}
	if math.Abs(a.Weight-14) > 1e-12 {
		t.Errorf("weight = %v, want 14", a.Weight)
	}
	if a.Fitness != Fitness(1, 14, &p) {
		t.Errorf("fitness stale: %v", a.Fitness)
	}
}

func TestAnimal_MigrationProbability(t *testing.T) {
	p := DefaultAnimalParams(Herbivore)
	a, _ := NewAnimal(Herbivore, 0, 10, &p)
	if got := a.MigrationProbability(&p); math.Abs(got-p.Mu*a.Fitness) > 1e-12 {
		t.Errorf("migration probability = %v", got)
	}
}
