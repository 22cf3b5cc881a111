package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSnapshot reads a YAML snapshot fixture. This is the collaborator
// seam for feeding the analyzer without a live acquisition pipeline.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	return &snap, nil
}
