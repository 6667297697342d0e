package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/biosim/components"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntBreakthrough  BookmarkType = "hunt_breakthrough"
	BookmarkCarnivoreRecovery BookmarkType = "carnivore_recovery"
	BookmarkHerbivoreCrash    BookmarkType = "herbivore_crash"
	BookmarkStableEcosystem   BookmarkType = "stable_ecosystem"
	BookmarkExtinction        BookmarkType = "extinction"
)

// Bookmark marks a notable year in a run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Year        int          `csv:"year"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"year", b.Year,
		"description", b.Description,
	)
}

// stableYears is how many consecutive low-variance years make a stable ecosystem.
const stableYears = 5

// BookmarkDetector detects interesting years from the yearly stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []YearStats
	historyIdx  int
	historyFull bool

	recentCarnMin   int                         // minimum carnivore count since the last recovery
	recentHerbPeak  int                         // peak herbivore count since the last crash
	stableCount     int                         // consecutive years with stable populations
	seen            [components.NumSpecies]bool // species ever present
	extinctReported [components.NumSpecies]bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableYears {
		historySize = stableYears
	}
	return &BookmarkDetector{
		history: make([]YearStats, historySize),
	}
}

// Check analyzes the latest year and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats YearStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(YearStats) *Bookmark{
			bd.checkHuntBreakthrough,
			bd.checkCarnivoreRecovery,
			bd.checkHerbivoreCrash,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}
	bookmarks = append(bookmarks, bd.checkExtinction(stats)...)

	bd.addToHistory(stats)

	if b := bd.checkStableEcosystem(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Carnivores > 0 && (stats.Carnivores < bd.recentCarnMin || bd.recentCarnMin == 0) {
		bd.recentCarnMin = stats.Carnivores
	}
	if stats.Herbivores > bd.recentHerbPeak {
		bd.recentHerbPeak = stats.Herbivores
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats YearStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % len(bd.history)
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest years, oldest first.
func (bd *BookmarkDetector) recent(n int) []YearStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = len(bd.history)
	}
	n = min(n, size)
	out := make([]YearStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + len(bd.history)) % len(bd.history)
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats YearStats) *Bookmark {
	history := bd.recent(len(bd.history))
	if len(history) < 3 || stats.Carnivores == 0 {
		return nil
	}

	var kills, carns int
	for _, h := range history {
		kills += h.Kills
		carns += h.Carnivores
	}
	if kills == 0 || carns == 0 {
		return nil
	}
	avgRate := float64(kills) / float64(carns)
	rate := float64(stats.Kills) / float64(stats.Carnivores)
	if rate > avgRate*2.0 && stats.Kills >= 3 {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Year:        stats.Year,
			Description: fmt.Sprintf("%.2f kills per carnivore is %.1fx average (%.2f)", rate, rate/avgRate, avgRate),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCarnivoreRecovery(stats YearStats) *Bookmark {
	if bd.recentCarnMin == 0 || bd.recentCarnMin > 3 {
		return nil
	}
	if stats.Carnivores >= bd.recentCarnMin*3 && stats.Carnivores >= 6 {
		oldMin := bd.recentCarnMin
		bd.recentCarnMin = stats.Carnivores
		return &Bookmark{
			Type:        BookmarkCarnivoreRecovery,
			Year:        stats.Year,
			Description: fmt.Sprintf("Carnivores recovered from %d to %d", oldMin, stats.Carnivores),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkHerbivoreCrash(stats YearStats) *Bookmark {
	if bd.recentHerbPeak == 0 {
		return nil
	}
	drop := 1.0 - float64(stats.Herbivores)/float64(bd.recentHerbPeak)
	if drop > 0.30 && stats.Herbivores < bd.recentHerbPeak-10 {
		oldPeak := bd.recentHerbPeak
		bd.recentHerbPeak = stats.Herbivores
		return &Bookmark{
			Type:        BookmarkHerbivoreCrash,
			Year:        stats.Year,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Herbivores),
		}
	}
	return nil
}

// checkStableEcosystem runs after stats is in the history.
func (bd *BookmarkDetector) checkStableEcosystem(stats YearStats) *Bookmark {
	if stats.Herbivores < 10 || stats.Carnivores < 3 {
		bd.stableCount = 0
		return nil
	}
	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}
	herbs := make([]float64, len(window))
	carns := make([]float64, len(window))
	for i, h := range window {
		herbs[i] = float64(h.Herbivores)
		carns[i] = float64(h.Carnivores)
	}
	if coefVar(herbs) < 0.2 && coefVar(carns) < 0.2 {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount == stableYears { // trigger once per stable stretch
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Year:        stats.Year,
			Description: fmt.Sprintf("Stable ecosystem with %d herbivores, %d carnivores", stats.Herbivores, stats.Carnivores),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats YearStats) []Bookmark {
	var out []Bookmark
	for i, n := range [components.NumSpecies]int{stats.Herbivores, stats.Carnivores} {
		if n > 0 {
			bd.seen[i] = true
			bd.extinctReported[i] = false
			continue
		}
		if bd.seen[i] && !bd.extinctReported[i] {
			bd.extinctReported[i] = true
			out = append(out, Bookmark{
				Type:        BookmarkExtinction,
				Year:        stats.Year,
				Description: components.Species(i).String() + "s went extinct",
			})
		}
	}
	return out
}

func coefVar(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
