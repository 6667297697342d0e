package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase names of the annual cycle.
const (
	PhaseFodder      = "fodder"
	PhaseFeeding     = "feeding"
	PhaseProcreation = "procreation"
	PhaseMigration   = "migration"
	PhaseAgeing      = "ageing"
	PhaseDeath       = "death"
	PhaseTelemetry   = "telemetry"
)

// Phases lists every phase in cycle order.
var Phases = []string{
	PhaseFodder, PhaseFeeding, PhaseProcreation, PhaseMigration,
	PhaseAgeing, PhaseDeath, PhaseTelemetry,
}

// PerfSample holds timing data for a single year.
type PerfSample struct {
	YearDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector keeps per-phase wall-clock cost for the last few years.
// A nil *PerfCollector is valid and records nothing.
type PerfCollector struct {
	ring []PerfSample
	next int
	n    int

	open      PerfSample
	yearStart time.Time
	phase     string
	phaseFrom time.Time
}

// NewPerfCollector creates a collector averaging over windowSize years.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{ring: make([]PerfSample, windowSize)}
}

// closePhase charges the running phase up to now.
func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.open.Phases[p.phase] += now.Sub(p.phaseFrom)
	}
	p.phase = ""
}

// StartYear begins timing a new simulated year.
func (p *PerfCollector) StartYear() {
	if p == nil {
		return
	}
	p.yearStart = time.Now()
	p.open = PerfSample{Phases: make(map[string]time.Duration, len(Phases))}
	p.phase = ""
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseFrom = phase, now
}

// EndYear closes the year and stores it in the window.
func (p *PerfCollector) EndYear() {
	if p == nil || p.open.Phases == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.open.YearDuration = now.Sub(p.yearStart)
	p.ring[p.next] = p.open
	p.next = (p.next + 1) % len(p.ring)
	p.n = min(p.n+1, len(p.ring))
	p.open = PerfSample{}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgYearDuration time.Duration
	MinYearDuration time.Duration
	MaxYearDuration time.Duration

	// Mean per-phase cost and its percentage of the mean year.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	YearsPerSecond float64
}

// Stats summarizes the years currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p == nil || p.n == 0 {
		return out
	}

	years := make([]float64, p.n)
	phaseSum := make(map[string]time.Duration)
	for i, s := range p.ring[:p.n] {
		years[i] = float64(s.YearDuration)
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	mean := stat.Mean(years, nil)
	out.AvgYearDuration = time.Duration(mean)
	out.MinYearDuration = time.Duration(floats.Min(years))
	out.MaxYearDuration = time.Duration(floats.Max(years))
	if mean > 0 {
		out.YearsPerSecond = float64(time.Second) / mean
	}
	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.n)
		out.PhaseAvg[phase] = avg
		if mean > 0 {
			out.PhasePct[phase] = 100 * float64(avg) / mean
		}
	}
	return out
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_year_us", s.AvgYearDuration.Microseconds(),
		"min_year_us", s.MinYearDuration.Microseconds(),
		"max_year_us", s.MaxYearDuration.Microseconds(),
		"years_per_sec", int(s.YearsPerSecond),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Year           int     `csv:"year"`
	AvgYearUS      int64   `csv:"avg_year_us"`
	MinYearUS      int64   `csv:"min_year_us"`
	MaxYearUS      int64   `csv:"max_year_us"`
	YearsPerSec    float64 `csv:"years_per_sec"`
	FodderPct      float64 `csv:"fodder_pct"`
	FeedingPct     float64 `csv:"feeding_pct"`
	ProcreationPct float64 `csv:"procreation_pct"`
	MigrationPct   float64 `csv:"migration_pct"`
	AgeingPct      float64 `csv:"ageing_pct"`
	DeathPct       float64 `csv:"death_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(year int) PerfStatsCSV {
	return PerfStatsCSV{
		Year:           year,
		AvgYearUS:      s.AvgYearDuration.Microseconds(),
		MinYearUS:      s.MinYearDuration.Microseconds(),
		MaxYearUS:      s.MaxYearDuration.Microseconds(),
		YearsPerSec:    s.YearsPerSecond,
		FodderPct:      s.PhasePct[PhaseFodder],
		FeedingPct:     s.PhasePct[PhaseFeeding],
		ProcreationPct: s.PhasePct[PhaseProcreation],
		MigrationPct:   s.PhasePct[PhaseMigration],
		AgeingPct:      s.PhasePct[PhaseAgeing],
		DeathPct:       s.PhasePct[PhaseDeath],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
