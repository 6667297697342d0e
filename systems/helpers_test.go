package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// scriptedRNG replays fixed draws. When a script runs out it repeats its last value.
type scriptedRNG struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *scriptedRNG) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[min(r.fi, len(r.floats)-1)]
	r.fi++
	return v
}

func (r *scriptedRNG) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[min(r.ii, len(r.ints)-1)] % n
	r.ii++
	return v
}

// always returns a stream whose every uniform draw is v.
func always(v float64) *scriptedRNG {
	return &scriptedRNG{floats: []float64{v}}
}

func newTestCell(t *testing.T, terrain components.Terrain, reg *config.Registry) (*Cell, *Herd) {
	t.Helper()
	if reg == nil {
		reg = config.DefaultRegistry()
	}
	herd := NewHerd()
	return NewCell(components.Loc(2, 2), terrain, herd, reg), herd
}

func place(t *testing.T, c *Cell, reg Params, s components.Species, age int, weight float64) ecs.Entity {
	t.Helper()
	a, err := components.NewAnimal(s, age, weight, reg.Animal(s))
	if err != nil {
		t.Fatalf("NewAnimal: %v", err)
	}
	e, err := c.Place(a)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	return e
}

func mustSet(t *testing.T, reg *config.Registry, species string, overrides map[string]float64) {
	t.Helper()
	if err := reg.SetAnimalParameters(species, overrides); err != nil {
		t.Fatalf("SetAnimalParameters(%s): %v", species, err)
	}
}
