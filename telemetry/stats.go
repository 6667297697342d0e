package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// YearStats holds the aggregated statistics of one simulated year.
type YearStats struct {
	Year int `csv:"year"`

	// Population counts at year end
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`

	// Events during the year
	HerbivoreBirths     int `csv:"herbivore_births"`
	CarnivoreBirths     int `csv:"carnivore_births"`
	HerbivoreDeaths     int `csv:"herbivore_deaths"`
	CarnivoreDeaths     int `csv:"carnivore_deaths"`
	Kills               int `csv:"kills"`
	HerbivoreMigrations int `csv:"herbivore_migrations"`
	CarnivoreMigrations int `csv:"carnivore_migrations"`
	BlockedMoves        int `csv:"blocked_moves"`

	// Fodder
	FodderEaten float64 `csv:"fodder_eaten"`
	FodderLeft  float64 `csv:"fodder_left"` // sampled at year end

	// Trait distributions (sampled at year end)
	HerbAgeMean     float64 `csv:"herb_age_mean"`
	HerbWeightMean  float64 `csv:"herb_weight_mean"`
	HerbWeightStd   float64 `csv:"herb_weight_std"`
	HerbWeightP10   float64 `csv:"herb_weight_p10"`
	HerbWeightP50   float64 `csv:"herb_weight_p50"`
	HerbWeightP90   float64 `csv:"herb_weight_p90"`
	HerbFitnessMean float64 `csv:"herb_fitness_mean"`
	HerbFitnessP50  float64 `csv:"herb_fitness_p50"`

	CarnAgeMean     float64 `csv:"carn_age_mean"`
	CarnWeightMean  float64 `csv:"carn_weight_mean"`
	CarnWeightStd   float64 `csv:"carn_weight_std"`
	CarnWeightP10   float64 `csv:"carn_weight_p10"`
	CarnWeightP50   float64 `csv:"carn_weight_p50"`
	CarnWeightP90   float64 `csv:"carn_weight_p90"`
	CarnFitnessMean float64 `csv:"carn_fitness_mean"`
	CarnFitnessP50  float64 `csv:"carn_fitness_p50"`
}

// TraitStats summarises one trait over a population.
type TraitStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeTraitStats calculates population mean, standard deviation and
// empirical quantiles. Returns zeros for an empty slice.
func ComputeTraitStats(values []float64) TraitStats {
	if len(values) == 0 {
		return TraitStats{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return TraitStats{
		Mean: mean,
		Std:  std,
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s TraitStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s YearStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", s.Year),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("carnivore_births", s.CarnivoreBirths),
		slog.Int("herbivore_deaths", s.HerbivoreDeaths),
		slog.Int("carnivore_deaths", s.CarnivoreDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("herbivore_migrations", s.HerbivoreMigrations),
		slog.Int("carnivore_migrations", s.CarnivoreMigrations),
		slog.Int("blocked_moves", s.BlockedMoves),
		slog.Float64("fodder_eaten", s.FodderEaten),
		slog.Float64("fodder_left", s.FodderLeft),
		slog.Float64("herb_age_mean", s.HerbAgeMean),
		slog.Float64("herb_weight_mean", s.HerbWeightMean),
		slog.Float64("herb_weight_std", s.HerbWeightStd),
		slog.Float64("herb_weight_p10", s.HerbWeightP10),
		slog.Float64("herb_weight_p50", s.HerbWeightP50),
		slog.Float64("herb_weight_p90", s.HerbWeightP90),
		slog.Float64("herb_fitness_mean", s.HerbFitnessMean),
		slog.Float64("herb_fitness_p50", s.HerbFitnessP50),
		slog.Float64("carn_age_mean", s.CarnAgeMean),
		slog.Float64("carn_weight_mean", s.CarnWeightMean),
		slog.Float64("carn_weight_std", s.CarnWeightStd),
		slog.Float64("carn_weight_p10", s.CarnWeightP10),
		slog.Float64("carn_weight_p50", s.CarnWeightP50),
		slog.Float64("carn_weight_p90", s.CarnWeightP90),
		slog.Float64("carn_fitness_mean", s.CarnFitnessMean),
		slog.Float64("carn_fitness_p50", s.CarnFitnessP50),
	)
}

// LogStats logs the year stats using slog.
func (s YearStats) LogStats() {
	slog.Info("year_stats",
		"year", s.Year,
		"herbivores", s.Herbivores,
		"carnivores", s.Carnivores,
		"herbivore_births", s.HerbivoreBirths,
		"carnivore_births", s.CarnivoreBirths,
		"herbivore_deaths", s.HerbivoreDeaths,
		"carnivore_deaths", s.CarnivoreDeaths,
		"kills", s.Kills,
		"migrations", s.HerbivoreMigrations+s.CarnivoreMigrations,
		"blocked_moves", s.BlockedMoves,
		"fodder_eaten", s.FodderEaten,
		"herb_weight_mean", s.HerbWeightMean,
		"carn_weight_mean", s.CarnWeightMean,
		"herb_fitness_mean", s.HerbFitnessMean,
		"carn_fitness_mean", s.CarnFitnessMean,
	)
}
