package telemetry

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest identifies one run in its output directory.
type Manifest struct {
	RunID    string    `yaml:"run_id"`
	Seed     int64     `yaml:"seed"`
	Years    int       `yaml:"years"`
	Started  time.Time `yaml:"started"`
	Finished time.Time `yaml:"finished,omitempty"`

	FinalYear   int            `yaml:"final_year,omitempty"`
	FinalCounts map[string]int `yaml:"final_counts,omitempty"`
}

// NewManifest starts a manifest with a fresh run id.
func NewManifest(seed int64, years int) *Manifest {
	return &Manifest{
		RunID:   uuid.NewString(),
		Seed:    seed,
		Years:   years,
		Started: time.Now().UTC(),
	}
}

// Finish stamps the end of the run and the final population.
func (m *Manifest) Finish(year int, counts map[string]int) {
	m.Finished = time.Now().UTC()
	m.FinalYear = year
	m.FinalCounts = counts
}

// WriteYAML saves the manifest to path.
func (m *Manifest) WriteYAML(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
