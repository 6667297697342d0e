package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/biosim/config"
)

// CellRecord is the state of one cell at the end of a year.
type CellRecord struct {
	Year       int     `csv:"year"`
	Row        int     `csv:"row"`
	Col        int     `csv:"col"`
	Terrain    string  `csv:"terrain"`
	Fodder     float64 `csv:"fodder"`
	Herbivores int     `csv:"herbivores"`
	Carnivores int     `csv:"carnivores"`
}

// csvFile appends records to one CSV file, writing the header once.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{name: name, f: f}, nil
}

// write marshals a slice of records.
func (c *csvFile) write(records any) error {
	var err error
	if !c.headerWritten {
		err = gocsv.Marshal(records, c.f)
		c.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

// OutputManager handles structured run output with CSV logging.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir        string
	years      *csvFile
	cells      *csvFile
	histograms *csvFile
	perf       *csvFile
	bookmarks  *csvFile
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		dst  **csvFile
		name string
	}{
		{&om.years, "years.csv"},
		{&om.cells, "cells.csv"},
		{&om.histograms, "histograms.csv"},
		{&om.perf, "perf.csv"},
		{&om.bookmarks, "bookmarks.csv"},
	}
	for _, spec := range files {
		f, err := createCSV(dir, spec.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*spec.dst = f
	}
	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteManifest saves the run manifest as run.yaml.
func (om *OutputManager) WriteManifest(m *Manifest) error {
	if om == nil || m == nil {
		return nil
	}
	return m.WriteYAML(filepath.Join(om.dir, "run.yaml"))
}

// WriteYear appends a year stats record to years.csv.
func (om *OutputManager) WriteYear(stats YearStats) error {
	if om == nil {
		return nil
	}
	return om.years.write([]YearStats{stats})
}

// WriteCells appends a per-cell snapshot to cells.csv.
func (om *OutputManager) WriteCells(records []CellRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	return om.cells.write(records)
}

// WriteHistograms appends trait histograms to histograms.csv.
func (om *OutputManager) WriteHistograms(records []HistogramRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	return om.histograms.write(records)
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, year int) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(year)})
}

// WriteBookmarks appends detected bookmarks to bookmarks.csv.
func (om *OutputManager) WriteBookmarks(bookmarks []Bookmark) error {
	if om == nil || len(bookmarks) == 0 {
		return nil
	}
	return om.bookmarks.write(bookmarks)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, c := range []*csvFile{om.years, om.cells, om.histograms, om.perf, om.bookmarks} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
