// Package config provides the correlation settings, the YAML configuration
// file and the startup environment check.
package config

import (
	"errors"
	"fmt"

	"correlation-map/internal/metric"
	"correlation-map/pkg/geometry"
)

// Default correlation parameters.
const (
	DefaultMatchCount = 5
	DefaultTileSize   = 2
)

// Correlation selects the pre-processing steps and map parameters of a run.
type Correlation struct {
	// AutoRotate estimates and undoes the rotation of the destination.
	AutoRotate bool `yaml:"autoRotate" json:"auto_rotate"`

	// AutoLocate finds the source inside the destination and crops to it.
	AutoLocate bool `yaml:"autoLocate" json:"auto_locate"`

	// CropToRegion crops the source to Region before anything else.
	CropToRegion bool `yaml:"cropToRegion" json:"crop_to_region"`

	Metric metric.Kind `yaml:"metric" json:"metric"`

	// MatchCount is the number of feature matches drawn in the rotation
	// visualization.
	MatchCount int `yaml:"matchCount" json:"match_count"`

	// TileSize is the tile edge length in pixels.
	TileSize int `yaml:"tileSize" json:"tile_size"`

	Region geometry.Region `yaml:"region" json:"region"`
}

// Default returns the default correlation settings.
func Default() Correlation {
	return Correlation{
		Metric:     metric.Default(),
		MatchCount: DefaultMatchCount,
		TileSize:   DefaultTileSize,
	}
}

// Validate checks the settings and reports every problem found.
func (c Correlation) Validate() error {
	var errs []error
	if !c.Metric.Valid() {
		errs = append(errs, fmt.Errorf("unknown metric %v", c.Metric))
	}
	if c.TileSize < 1 {
		errs = append(errs, fmt.Errorf("tile size must be at least 1, got %d", c.TileSize))
	}
	if c.MatchCount < 0 {
		errs = append(errs, fmt.Errorf("match count must not be negative, got %d", c.MatchCount))
	}
	if c.CropToRegion && c.Region.Empty() {
		errs = append(errs, fmt.Errorf("crop to region needs a non-empty region, got %v", c.Region))
	}
	return errors.Join(errs...)
}
