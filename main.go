package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/systems"
	"github.com/pthm-cable/biosim/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, -1 = time-based)")
	years := flag.Int("years", 0, "Years to simulate (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and run manifest")
	logEvery := flag.Int("log-every", -1, "Years between stats log lines (-1 = use config, 0 = never)")
	logFormat := flag.String("log-format", "json", "Log format: json or text")
	verbose := flag.Bool("v", false, "Enable debug logging")
	perf := flag.Bool("perf", false, "Time each phase and write perf.csv")
	generate := flag.String("generate-map", "", "Replace the configured map with a random one of size ROWSxCOLS, e.g. 20x30")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if *verbose {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if strings.EqualFold(*logFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides are written back so the config snapshot matches the run.
	switch {
	case *seed == -1:
		cfg.Simulation.Seed = time.Now().UnixNano()
	case *seed != 0:
		cfg.Simulation.Seed = *seed
	}
	if *years > 0 {
		cfg.Simulation.Years = *years
	}
	if *logEvery >= 0 {
		cfg.Simulation.LogEvery = *logEvery
	}

	if *generate != "" {
		var rows, cols int
		if _, err := fmt.Sscanf(*generate, "%dx%d", &rows, &cols); err != nil {
			slog.Error("invalid -generate-map size", "value", *generate, "error", err)
			os.Exit(1)
		}
		geography, err := island.GenerateMap(rows, cols, cfg.Simulation.Seed)
		if err != nil {
			slog.Error("failed to generate map", "error", err)
			os.Exit(1)
		}
		cfg.Island.Map = geography
		slog.Info("generated map", "rows", rows, "cols", cols)
	}

	reg, err := config.NewRegistry(cfg)
	if err != nil {
		slog.Error("invalid parameters", "error", err)
		os.Exit(1)
	}

	birthWeight := systems.NormalBirthWeight
	if strings.EqualFold(cfg.Simulation.BirthWeight, config.BirthWeightLogNormal) {
		birthWeight = systems.LogNormalBirthWeight
	}
	var perfCollector *telemetry.PerfCollector
	if *perf {
		perfCollector = telemetry.NewPerfCollector(max(cfg.Simulation.LogEvery, 1))
	}

	isl, err := island.New(cfg.Island.Map, cfg.Island.Population, cfg.Simulation.Seed, reg,
		island.WithBirthWeight(birthWeight),
		island.WithPerf(perfCollector),
	)
	if err != nil {
		slog.Error("failed to build island", "error", err)
		os.Exit(1)
	}
	for _, intro := range cfg.Island.Introductions {
		if err := isl.Schedule(intro.Year, intro.Population); err != nil {
			slog.Error("invalid introduction", "error", err)
			os.Exit(1)
		}
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	manifest := telemetry.NewManifest(cfg.Simulation.Seed, cfg.Simulation.Years)
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}
	if err := om.WriteManifest(manifest); err != nil {
		slog.Error("failed to write manifest", "error", err)
	}

	slog.Info("starting simulation",
		"run_id", manifest.RunID,
		"seed", cfg.Simulation.Seed,
		"years", cfg.Simulation.Years,
		"output_dir", om.Dir(),
	)

	started := time.Now()
	bookmarks := telemetry.NewBookmarkDetector(10)
	snapshotEvery := cfg.Telemetry.CellSnapshotEvery
	extinct := false
	err = isl.Simulate(cfg.Simulation.Years, func(stats telemetry.YearStats) error {
		if err := om.WriteYear(stats); err != nil {
			slog.Error("failed to write year stats", "error", err)
		}

		if snapshotEvery > 0 && stats.Year%snapshotEvery == 0 {
			if err := om.WriteCells(isl.CellRecords()); err != nil {
				slog.Error("failed to write cells", "error", err)
			}
			hist := telemetry.HistogramRecords(stats.Year, isl.Census(), cfg.Telemetry.Histograms)
			if err := om.WriteHistograms(hist); err != nil {
				slog.Error("failed to write histograms", "error", err)
			}
		}

		if every := cfg.Simulation.LogEvery; every > 0 && stats.Year%every == 0 {
			stats.LogStats()
			if perfCollector != nil {
				perfStats := perfCollector.Stats()
				perfStats.LogStats()
				if err := om.WritePerf(perfStats, stats.Year); err != nil {
					slog.Error("failed to write perf", "error", err)
				}
			}
		}

		found := bookmarks.Check(stats)
		for _, b := range found {
			b.LogBookmark()
		}
		if err := om.WriteBookmarks(found); err != nil {
			slog.Error("failed to write bookmarks", "error", err)
		}

		if !extinct && stats.Herbivores+stats.Carnivores == 0 {
			extinct = true
			slog.Warn("population extinct", "year", stats.Year)
		}
		return nil
	})
	if err != nil {
		slog.Error("simulation stopped", "year", isl.Year(), "error", err)
	}

	manifest.Finish(isl.Year(), isl.NumAnimalsPerSpecies())
	if err := om.WriteManifest(manifest); err != nil {
		slog.Error("failed to write manifest", "error", err)
	}

	slog.Info("simulation finished",
		"run_id", manifest.RunID,
		"year", isl.Year(),
		"herbivores", manifest.FinalCounts["Herbivore"],
		"carnivores", manifest.FinalCounts["Carnivore"],
		"elapsed", time.Since(started).Round(time.Millisecond).String(),
	)
}
