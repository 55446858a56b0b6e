// Package datasetschema reads the dataset schema descriptors the training
// system keys its datasets on. A schema names the position vocabulary of a
// sport and whether the ball is tracked alongside the players; the trainer
// selects one by name via its --schema flag. Validating the descriptor
// before launch catches a missing or malformed schema file that would
// otherwise kill the trainer minutes into a run.
package datasetschema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// footToMeter converts field coordinates recorded in feet.
const footToMeter = 0.3048

// Schema describes one dataset family.
type Schema struct {
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
	WithBall  bool     `json:"with_ball"`
	// Metric is the unit trajectories should be converted to; "meter"
	// applies the foot-to-meter factor, anything else passes through.
	Metric string `json:"metric,omitempty"`
}

// Load reads and validates a schema descriptor from a JSON file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	return &s, nil
}

// Resolve loads the schema named by a trainer's --schema flag from a
// directory of descriptors, conventionally <dir>/<name>.json.
func Resolve(dir, name string) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name must not be empty")
	}
	return Load(filepath.Join(dir, name+".json"))
}

// Validate checks internal consistency of a schema descriptor.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name must not be empty")
	}
	seen := make(map[string]struct{}, len(s.Positions))
	for _, pos := range s.Positions {
		if pos == "" {
			return fmt.Errorf("schema %q has an empty position label", s.Name)
		}
		if _, dup := seen[pos]; dup {
			return fmt.Errorf("schema %q has duplicate position label %q", s.Name, pos)
		}
		seen[pos] = struct{}{}
	}
	return nil
}

// TeamVectorLen is the width of the one-hot team encoding: two teams, plus
// one slot for the ball when it is tracked.
func (s *Schema) TeamVectorLen() int {
	if s.WithBall {
		return 3
	}
	return 2
}

// UnitFactor returns the multiplier applied to raw field coordinates.
func (s *Schema) UnitFactor() float64 {
	if s.Metric == "meter" {
		return footToMeter
	}
	return 1.0
}
