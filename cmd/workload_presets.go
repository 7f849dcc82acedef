// cmd/workload_presets.go
package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PresetOverride is one named entry in a presets.yaml file: a partial
// workload override applied on top of the workload TOML's values. Zero
// fields are left untouched, matching the optional-flag CLI convention.
type PresetOverride struct {
	BatchSize      int   `yaml:"batch_size"`
	Seed           int64 `yaml:"seed"`
	NodeFeatureDim int   `yaml:"node_feature_dim"`
}

// PresetsFile is the full presets.yaml structure. All top-level sections
// must be listed here to satisfy KnownFields(true) strict parsing.
type PresetsFile struct {
	Version  string                    `yaml:"version"`
	Presets  map[string]PresetOverride `yaml:"presets"`
}

// loadPresetsFile parses a presets.yaml file with strict field checking:
// an unrecognized key is a config error, not silently ignored.
func loadPresetsFile(path string) (PresetsFile, error) {
	var pf PresetsFile
	data, err := os.ReadFile(path)
	if err != nil {
		return pf, fmt.Errorf("reading presets file %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&pf); err != nil {
		return pf, fmt.Errorf("parsing presets file %s: %w", path, err)
	}
	return pf, nil
}

// lookupPreset returns the named preset override, or false if it isn't
// defined in the file.
func lookupPreset(pf PresetsFile, name string) (PresetOverride, bool) {
	p, ok := pf.Presets[name]
	return p, ok
}
