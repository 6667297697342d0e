package components

// AnimalSpec describes animals to place on the island.
// A nil Weight draws a birth weight; a zero Count means 1.
type AnimalSpec struct {
	Species string   `yaml:"species"`
	Age     int      `yaml:"age"`
	Weight  *float64 `yaml:"weight,omitempty"`
	Count   int      `yaml:"count,omitempty"`
}

// Spec returns a single-animal descriptor with an explicit weight.
func Spec(species string, age int, weight float64) AnimalSpec {
	return AnimalSpec{Species: species, Age: age, Weight: &weight}
}

// Times returns the descriptor repeated n times.
func (s AnimalSpec) Times(n int) AnimalSpec {
	s.Count = n
	return s
}

// N returns how many animals the descriptor stands for. Negative counts are
// rejected when the population is planned.
func (s AnimalSpec) N() int {
	if s.Count == 0 {
		return 1
	}
	return s.Count
}

// PopulationGroup is a list of animals tagged with the cell they start in.
type PopulationGroup struct {
	Loc Location     `yaml:"loc"`
	Pop []AnimalSpec `yaml:"pop"`
}
