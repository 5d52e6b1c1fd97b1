// Package report provides the JSON run report written next to the saved
// artifacts.
package report

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"correlation-map/internal/artifact"
	"correlation-map/internal/config"
	"correlation-map/internal/correlation"
	"correlation-map/internal/metric"
	"correlation-map/internal/version"
	"correlation-map/pkg/geometry"
)

// FormatVersion is the current report layout version.
const FormatVersion = 1

// File is a correlation run report (.json).
type File struct {
	Version     int       `json:"version"`
	Tool        string    `json:"tool,omitempty"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Image paths (relative to report file)
	SourceImage      string `json:"source_image,omitempty"`
	DestinationImage string `json:"destination_image,omitempty"`

	Settings config.Correlation `json:"settings"`
	Stages   []string           `json:"stages,omitempty"`

	// Results
	RotationAngle *float64          `json:"rotation_angle,omitempty"`
	FoundRegion   *geometry.Region  `json:"found_region,omitempty"`
	Map           *MapSummary       `json:"map,omitempty"`
	SearchLimit   int               `json:"search_limit,omitempty"`
	Differences   []geometry.Region `json:"differences,omitempty"`
	Error         string            `json:"error,omitempty"`

	// Saved artifact paths by tag name (relative to report file)
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// MapSummary describes a correlation map without its scores.
type MapSummary struct {
	Rows     int               `json:"rows"`
	Cols     int               `json:"cols"`
	Metric   metric.Kind       `json:"metric"`
	TileSize int               `json:"tile_size"`
	Stats    correlation.Stats `json:"stats"`
}

// New creates an empty report.
func New(name string, settings config.Correlation) *File {
	now := time.Now()
	return &File{
		Version:  FormatVersion,
		Tool:     "correlation-map " + version.Version,
		Name:     name,
		Created:  now,
		Modified: now,
		Settings: settings,
	}
}

// Load loads a report file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	if f.Version > FormatVersion {
		return nil, fmt.Errorf("report %s has unsupported version %d", path, f.Version)
	}
	return &f, nil
}

// Save writes the report to path.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SetSourceImage sets the source image path (relative to report).
func (f *File) SetSourceImage(reportPath, imagePath string) {
	f.SourceImage = relPath(reportPath, imagePath)
	f.Modified = time.Now()
}

// SetDestinationImage sets the destination image path (relative to report).
func (f *File) SetDestinationImage(reportPath, imagePath string) {
	f.DestinationImage = relPath(reportPath, imagePath)
	f.Modified = time.Now()
}

// GetSourceImagePath returns the absolute path to the source image.
func (f *File) GetSourceImagePath(reportPath string) string {
	return absPath(reportPath, f.SourceImage)
}

// GetDestinationImagePath returns the absolute path to the destination image.
func (f *File) GetDestinationImagePath(reportPath string) string {
	return absPath(reportPath, f.DestinationImage)
}

// SetArtifact records where the artifact with tag was saved.
func (f *File) SetArtifact(reportPath string, tag artifact.Tag, path string) {
	if f.Artifacts == nil {
		f.Artifacts = make(map[string]string)
	}
	f.Artifacts[tag.String()] = relPath(reportPath, path)
	f.Modified = time.Now()
}

// ArtifactPath returns the absolute path of a saved artifact, or "" if the
// report has none for tag.
func (f *File) ArtifactPath(reportPath string, tag artifact.Tag) string {
	return absPath(reportPath, f.Artifacts[tag.String()])
}

// SetStages records the planned stage statuses.
func (f *File) SetStages(statuses []string) {
	f.Stages = append([]string(nil), statuses...)
}

// SetAngle records the estimated rotation.
func (f *File) SetAngle(angle float64) {
	f.RotationAngle = &angle
}

// SetFoundRegion records where the source was located.
func (f *File) SetFoundRegion(r geometry.Region) {
	f.FoundRegion = &r
}

// SetMap records the shape, parameters and statistics of m.
func (f *File) SetMap(m *correlation.Map) {
	rows, cols := m.Dims()
	f.Map = &MapSummary{
		Rows:     rows,
		Cols:     cols,
		Metric:   m.Metric(),
		TileSize: m.TileSize(),
		Stats:    m.Stats(),
	}
}

// SetDifferences records the tiles flagged by difference analysis.
func (f *File) SetDifferences(limit int, rects []image.Rectangle) {
	f.SearchLimit = limit
	f.Differences = make([]geometry.Region, len(rects))
	for i, r := range rects {
		f.Differences[i] = geometry.RegionFromRectangle(r)
	}
}

func relPath(reportPath, p string) string {
	rel, err := filepath.Rel(filepath.Dir(reportPath), p)
	if err != nil {
		return p
	}
	return rel
}

func absPath(reportPath, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(reportPath), p)
}
