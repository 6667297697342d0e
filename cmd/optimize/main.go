// Package main provides CMA-ES optimization for finding species parameters
// that keep herbivores and carnivores coexisting on the island.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/telemetry"
)

// formatDuration renders d as 1h02m03s, or 2m03s below an hour.
func formatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// evalLog appends one CSV row per evaluation. Columns follow the parameter
// vector, so the header is built at run time.
type evalLog struct {
	f *os.File
	w *csv.Writer
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	return l, l.write(header)
}

func (l *evalLog) record(eval int, fitness, quality float64, values []float64) error {
	row := make([]string, 0, 3+len(values))
	row = append(row,
		strconv.Itoa(eval),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
	)
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	return l.write(row)
}

func (l *evalLog) write(row []string) error {
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return l.f.Close()
}

// tracker keeps the best clamped vector seen and reports progress.
type tracker struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	log       *evalLog
	maxEvals  int
	started   time.Time

	evals       int
	bestFitness float64
	best        []float64
}

func (t *tracker) observe(x []float64, fitness float64) {
	t.evals++
	values := t.params.Clamp(t.params.Denormalize(x))
	if t.best == nil || fitness < t.bestFitness {
		t.bestFitness, t.best = fitness, values
	}

	quality := t.evaluator.LastQuality()
	if err := t.log.record(t.evals, fitness, quality, values); err != nil {
		log.Printf("failed to log evaluation %d: %v", t.evals, err)
	}

	elapsed := time.Since(t.started)
	eta := time.Duration(t.maxEvals-t.evals) * (elapsed / time.Duration(t.evals))
	fmt.Printf("Eval %d/%d: coexisted=%.0fy quality=%.2f (best=%.1f) | elapsed: %s, ETA: %s\n",
		t.evals, t.maxEvals, -fitness/(1.0+0.2*quality), quality, t.bestFitness,
		formatDuration(elapsed), formatDuration(eta))
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxYears := flag.Int("max-years", 500, "Maximum simulated years per run (cap)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()
	baseReg, err := config.NewRegistry(baseCfg)
	if err != nil {
		log.Fatalf("invalid base parameters: %v", err)
	}

	params := NewParamVector(baseReg)
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *maxYears, evalSeeds, baseCfg, baseReg)

	evalLog, err := newEvalLog(filepath.Join(*outputDir, "optimize_log.csv"), params)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer evalLog.Close()

	t := &tracker{
		params:    params,
		evaluator: evaluator,
		log:       evalLog,
		maxEvals:  *maxEvals,
		started:   time.Now(),
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}

	// The search runs in normalized [0,1] space; Evaluate clamps.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			fitness := evaluator.Evaluate(params.Denormalize(x))
			t.observe(x, fitness)
			return fitness
		},
	}
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		params.Dim(), popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, years per run: %d\n", *seeds, *maxYears)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if t.best == nil && result != nil {
		t.best = params.Clamp(params.Denormalize(result.X))
	}
	if t.best == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", t.evals, formatDuration(time.Since(t.started)))
	fmt.Printf("Best fitness: %.1f\n\nBest parameters:\n", t.bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %-20s %-32s %.6f\n", spec.Name, spec.Path(), t.best[i])
	}

	if err := saveBestConfig(*configPath, *outputDir, params, t.best); err != nil {
		log.Printf("failed to write best config: %v", err)
	}
	if err := saveBestRun(*outputDir, evaluator.BestStats()); err != nil {
		log.Printf("failed to write best run: %v", err)
	}
}

// saveBestConfig writes the base config with the best parameters applied.
func saveBestConfig(configPath, dir string, params *ParamVector, best []float64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := params.ApplyToConfig(cfg, best); err != nil {
		return err
	}
	path := filepath.Join(dir, "best_config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		return err
	}
	fmt.Printf("\nBest config saved to: %s\n", path)
	return nil
}

// saveBestRun writes the year series of the best seed as CSV.
func saveBestRun(dir string, stats []telemetry.YearStats) error {
	if len(stats) == 0 {
		return nil
	}
	path := filepath.Join(dir, "best_run.csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&stats, f); err != nil {
		return err
	}
	fmt.Printf("Best run saved to: %s\n", path)
	return nil
}
