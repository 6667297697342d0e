package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"
)

// Population is the set of animals of one species living in a cell.
// Add and Remove are O(1); iteration order is deterministic for a given
// sequence of operations but carries no meaning, so phases that care about
// order sort explicitly.
type Population struct {
	members []ecs.Entity
	index   map[ecs.Entity]int
}

// NewPopulation creates an empty population.
func NewPopulation() *Population {
	return &Population{index: make(map[ecs.Entity]int)}
}

// Len returns the number of members.
func (p *Population) Len() int {
	return len(p.members)
}

// Contains reports whether e is a member.
func (p *Population) Contains(e ecs.Entity) bool {
	_, ok := p.index[e]
	return ok
}

// Add inserts e. Adding an existing member is a no-op.
func (p *Population) Add(e ecs.Entity) {
	if _, ok := p.index[e]; ok {
		return
	}
	p.index[e] = len(p.members)
	p.members = append(p.members, e)
}

// Remove deletes e by swapping the last member into its slot.
func (p *Population) Remove(e ecs.Entity) bool {
	i, ok := p.index[e]
	if !ok {
		return false
	}
	last := len(p.members) - 1
	if i != last {
		moved := p.members[last]
		p.members[i] = moved
		p.index[moved] = i
	}
	p.members = p.members[:last]
	delete(p.index, e)
	return true
}

// Members returns a copy of the members, safe to hold while the population changes.
func (p *Population) Members() []ecs.Entity {
	out := make([]ecs.Entity, len(p.members))
	copy(out, p.members)
	return out
}

// SortedByFitness returns a copy of the members ordered by fitness.
// Ties keep the population order.
func (p *Population) SortedByFitness(h *Herd, descending bool) []ecs.Entity {
	out := p.Members()
	fitness := make(map[ecs.Entity]float64, len(out))
	for _, e := range out {
		fitness[e] = h.Get(e).Fitness
	}
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return fitness[out[i]] > fitness[out[j]]
		}
		return fitness[out[i]] < fitness[out[j]]
	})
	return out
}
