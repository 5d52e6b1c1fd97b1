package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration document.
type File struct {
	Correlation Correlation `yaml:"correlation"`

	// Output parameters
	Output struct {
		// Dir receives saved artifacts, renders and the report
		Dir string `yaml:"dir"`

		// Heatmap renders the map as a colored grid
		Heatmap bool `yaml:"heatmap"`

		// Surface renders the map as a 3-D wireframe
		Surface bool `yaml:"surface"`

		// SearchLimit is the difference sensitivity in percent, negative disables analysis
		SearchLimit int `yaml:"searchLimit"`

		// Report writes a JSON run report
		Report bool `yaml:"report"`
	} `yaml:"output"`
}

// DefaultFile returns a configuration with default values.
func DefaultFile() *File {
	f := &File{Correlation: Default()}
	f.Output.Dir = "output"
	f.Output.Heatmap = true
	f.Output.Surface = false
	f.Output.SearchLimit = 80
	f.Output.Report = true
	return f
}

// LoadFile loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadFile(path string) (*File, error) {
	f := DefaultFile()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := f.Correlation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if f.Output.SearchLimit > 100 {
		return nil, fmt.Errorf("invalid config file %s: search limit %d above 100", path, f.Output.SearchLimit)
	}
	return f, nil
}

// SaveFile writes the configuration to a YAML file.
func SaveFile(f *File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
