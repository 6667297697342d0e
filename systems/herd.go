// Package systems implements the per-cell rules of the annual cycle.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
)

// RNG is the random stream every stochastic rule draws from.
// *rand.Rand satisfies it; tests inject scripted streams.
type RNG interface {
	Float64() float64
	Intn(n int) int
}

// Herd is the arena holding every animal on an island as an ECS entity.
// Cells refer to animals by entity handle only.
//
// Pointers returned by Get stay valid until the next Spawn or Flush, so
// removals are queued with Kill and applied by Flush at the end of a phase.
type Herd struct {
	world   *ecs.World
	animals *ecs.Map1[components.Animal]
	filter  *ecs.Filter1[components.Animal]

	dead  []ecs.Entity
	count int
}

// NewHerd creates an empty arena.
func NewHerd() *Herd {
	world := ecs.NewWorld()
	return &Herd{
		world:   world,
		animals: ecs.NewMap1[components.Animal](world),
		filter:  ecs.NewFilter1[components.Animal](world),
	}
}

// Spawn stores a new animal and returns its handle.
func (h *Herd) Spawn(a components.Animal) ecs.Entity {
	h.count++
	return h.animals.NewEntity(&a)
}

// Get returns the animal behind a handle.
func (h *Herd) Get(e ecs.Entity) *components.Animal {
	return h.animals.Get(e)
}

// Alive reports whether the handle refers to a stored animal.
func (h *Herd) Alive(e ecs.Entity) bool {
	return h.world.Alive(e)
}

// Kill queues an animal for removal at the next Flush.
func (h *Herd) Kill(e ecs.Entity) {
	h.dead = append(h.dead, e)
}

// Flush removes every queued animal and returns how many were removed.
func (h *Herd) Flush() int {
	n := len(h.dead)
	for _, e := range h.dead {
		h.world.RemoveEntity(e)
	}
	h.count -= n
	h.dead = h.dead[:0]
	return n
}

// Len returns the number of stored animals, including those queued for removal.
func (h *Herd) Len() int {
	return h.count
}

// Each visits every stored animal. fn must not spawn or flush.
func (h *Herd) Each(fn func(e ecs.Entity, a *components.Animal)) {
	query := h.filter.Query()
	for query.Next() {
		fn(query.Entity(), query.Get())
	}
}

// RefreshFitness recomputes fitness for every animal against the current
// parameter tables, so overrides made between years take effect.
func (h *Herd) RefreshFitness(params func(components.Species) *components.AnimalParams) {
	h.Each(func(_ ecs.Entity, a *components.Animal) {
		a.Refresh(params(a.Species))
	})
}
