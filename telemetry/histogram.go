package telemetry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// Traits traced by histograms.
const (
	TraitAge     = "age"
	TraitWeight  = "weight"
	TraitFitness = "fitness"
)

// Histogram holds counts over the bins [Edges[i], Edges[i+1]).
// Values at or above the last edge are counted in Overflow, negative values in Underflow.
type Histogram struct {
	Edges     []float64
	Counts    []float64
	Underflow int
	Overflow  int
}

// ComputeHistogram bins values with width spec.Delta up to spec.Max.
// The last bin is widened to a whole multiple of Delta when Max is not one.
func ComputeHistogram(values []float64, spec config.HistogramSpec) Histogram {
	n := int(math.Ceil(spec.Max/spec.Delta - 1e-9))
	if n < 1 {
		n = 1
	}
	edges := floats.Span(make([]float64, n+1), 0, float64(n)*spec.Delta)
	h := Histogram{Edges: edges, Counts: make([]float64, n)}

	inRange := make([]float64, 0, len(values))
	for _, v := range values {
		switch {
		case v < edges[0]:
			h.Underflow++
		case v >= edges[n]:
			h.Overflow++
		default:
			inRange = append(inRange, v)
		}
	}
	if len(inRange) == 0 {
		return h
	}
	sort.Float64s(inRange)
	stat.Histogram(h.Counts, edges, inRange, nil)
	return h
}

// HistogramRecord is one bin of one trait histogram, flattened for CSV export.
type HistogramRecord struct {
	Year    int     `csv:"year"`
	Species string  `csv:"species"`
	Trait   string  `csv:"trait"`
	Low     float64 `csv:"low"`
	High    float64 `csv:"high"`
	Count   int     `csv:"count"`
}

// HistogramRecords bins age, weight and fitness per species from a census.
func HistogramRecords(year int, census Census, specs config.HistogramsConfig) []HistogramRecord {
	var records []HistogramRecord
	for _, s := range components.AllSpecies() {
		traits := []struct {
			name   string
			values []float64
			spec   config.HistogramSpec
		}{
			{TraitAge, census.Ages[s], specs.Age},
			{TraitWeight, census.Weights[s], specs.Weight},
			{TraitFitness, census.Fitness[s], specs.Fitness},
		}
		for _, tr := range traits {
			h := ComputeHistogram(tr.values, tr.spec)
			for i, count := range h.Counts {
				records = append(records, HistogramRecord{
					Year:    year,
					Species: s.String(),
					Trait:   tr.name,
					Low:     h.Edges[i],
					High:    h.Edges[i+1],
					Count:   int(count),
				})
			}
		}
	}
	return records
}
