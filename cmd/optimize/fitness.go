package main

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/telemetry"
)

// errExtinct stops a run once coexistence has ended.
var errExtinct = errors.New("functional extinction")

// FitnessEvaluator runs island simulations and computes fitness.
type FitnessEvaluator struct {
	params   *ParamVector
	maxYears int
	seeds    []int64
	baseCfg  *config.Config
	baseReg  *config.Registry

	mu          sync.Mutex
	bestFitness float64
	bestStats   []telemetry.YearStats // year series of the best seed of the best evaluation
	lastQuality float64               // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxYears int, seeds []int64, baseCfg *config.Config, baseReg *config.Registry) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxYears:    maxYears,
		seeds:       seeds,
		baseCfg:     baseCfg,
		baseReg:     baseReg,
		bestFitness: math.Inf(1),
	}
}

// BestStats returns the year series from the best evaluation.
func (fe *FitnessEvaluator) BestStats() []telemetry.YearStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestStats
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if either species stays below this for
// extinctionGraceYears consecutive years once both are present, the run
// counts as functionally extinct.
const (
	minViablePop         = 3
	extinctionGraceYears = 5
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalYears int // years of coexistence before functional extinction
	stats         []telemetry.YearStats
	err           error
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	stats   []telemetry.YearStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative coexistence years scaled by quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Each island owns its registry, so seeds can run in parallel.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := computeQuality(result.stats)
			results[idx] = seedResult{
				fitness: computeFitness(result, quality),
				quality: quality,
				stats:   result.stats,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeed := 0
	for i, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < results[bestSeed].fitness {
			bestSeed = i
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestStats = results[bestSeed].stats
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single run until functional extinction or maxYears.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	result := &runResult{}

	reg := fe.baseReg.Clone()
	if err := fe.params.ApplyToRegistry(reg, x); err != nil {
		result.err = err
		return result
	}

	isl, err := island.New(fe.baseCfg.Island.Map, fe.baseCfg.Island.Population, seed, reg)
	if err != nil {
		result.err = err
		return result
	}
	for _, intro := range fe.baseCfg.Island.Introductions {
		if err := isl.Schedule(intro.Year, intro.Population); err != nil {
			result.err = fmt.Errorf("introduction: %w", err)
			return result
		}
	}

	coexisting := false
	lowYears := 0
	err = isl.Simulate(fe.maxYears, func(s telemetry.YearStats) error {
		result.stats = append(result.stats, s)
		if !coexisting {
			coexisting = s.Herbivores > 0 && s.Carnivores > 0
			return nil
		}
		result.survivalYears++
		if s.Herbivores < minViablePop || s.Carnivores < minViablePop {
			lowYears++
			if lowYears >= extinctionGraceYears {
				return errExtinct
			}
		} else {
			lowYears = 0
		}
		return nil
	})
	if err != nil && !errors.Is(err, errExtinct) {
		result.err = err
	}
	return result
}

// computeFitness converts a run into a minimisation target.
// Fitness = -(survivalYears × (1 + 0.2×quality)). Invalid runs score 0.
func computeFitness(r *runResult, quality float64) float64 {
	if r.err != nil {
		return 0
	}
	return -float64(r.survivalYears) * (1.0 + 0.2*quality)
}

const (
	qualityWeightRatio     = 0.35
	qualityWeightStability = 0.35
	qualityWeightHunting   = 0.30

	qualityWarmupYears = 5 // skip first N years of coexistence
	qualityMinPop      = 3 // exclude years where either species < this
	qualityTargetRatio = 5.0
)

// computeQuality computes ecosystem quality in [0, 1] from year stats.
func computeQuality(years []telemetry.YearStats) float64 {
	var valid []telemetry.YearStats
	warmup := qualityWarmupYears
	for _, y := range years {
		if y.Herbivores < qualityMinPop || y.Carnivores < qualityMinPop {
			continue
		}
		if warmup > 0 {
			warmup--
			continue
		}
		valid = append(valid, y)
	}
	if len(valid) == 0 {
		return 0
	}

	herbCounts := make([]float64, len(valid))
	carnCounts := make([]float64, len(valid))
	var ratioSum, huntSum float64
	for i, y := range valid {
		herbCounts[i] = float64(y.Herbivores)
		carnCounts[i] = float64(y.Carnivores)

		// 1. Population ratio score
		logErr := math.Log(herbCounts[i] / carnCounts[i] / qualityTargetRatio)
		ratioSum += math.Exp(-logErr * logErr)

		// 3. Hunting activity: kills per carnivore
		huntSum += 1.0 - math.Exp(-float64(y.Kills)/carnCounts[i]/2.0)
	}
	n := float64(len(valid))

	// 2. Population stability (CV across valid years)
	stabilityScore := 0.0
	if len(valid) >= 2 {
		cvHerb := cv(herbCounts)
		cvCarn := cv(carnCounts)
		stabilityScore = math.Exp(-(cvHerb*cvHerb + cvCarn*cvCarn))
	}

	quality := qualityWeightRatio*ratioSum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightHunting*huntSum/n

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
