package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"correlation-map/internal/metric"
	"correlation-map/pkg/geometry"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.MatchCount != 5 || c.TileSize != 2 || c.Metric != metric.SqDiffNormed {
		t.Errorf("Default() = %+v", c)
	}
	if c.AutoRotate || c.AutoLocate || c.CropToRegion {
		t.Error("pre-processing should be off by default")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Correlation)
		want   string
	}{
		{"tile size", func(c *Correlation) { c.TileSize = 0 }, "tile size"},
		{"match count", func(c *Correlation) { c.MatchCount = -1 }, "match count"},
		{"metric", func(c *Correlation) { c.Metric = metric.Kind(9) }, "metric"},
		{"crop without region", func(c *Correlation) { c.CropToRegion = true }, "region"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}

	c := Default()
	c.CropToRegion = true
	c.Region = geometry.NewRegion(10, 10, 0, 0)
	if err := c.Validate(); err != nil {
		t.Errorf("crop with region: %v", err)
	}

	c.TileSize, c.MatchCount = 0, -2
	if err := c.Validate(); err == nil || strings.Count(err.Error(), "\n") != 1 {
		t.Errorf("expected two joined errors, got %v", err)
	}
}

func TestLoadFileMissingGivesDefaults(t *testing.T) {
	f, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Correlation != Default() || f.Output.Dir != "output" || f.Output.SearchLimit != 80 {
		t.Errorf("LoadFile(missing) = %+v", f)
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	f := DefaultFile()
	f.Correlation.AutoRotate = true
	f.Correlation.CropToRegion = true
	f.Correlation.Region = geometry.NewRegion(50, 10, 5, 80)
	f.Correlation.Metric = metric.CCoeffNormed
	f.Correlation.TileSize = 8
	f.Output.Surface = true
	if err := SaveFile(f, path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Correlation != f.Correlation {
		t.Errorf("correlation = %+v, want %+v", got.Correlation, f.Correlation)
	}
	if got.Output != f.Output {
		t.Errorf("output = %+v, want %+v", got.Output, f.Output)
	}
}

func TestLoadFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "correlation:\n  metric: TM_CCORR\n  tileSize: 16\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Correlation.Metric != metric.CCorr || f.Correlation.TileSize != 16 {
		t.Errorf("correlation = %+v", f.Correlation)
	}
	if f.Correlation.MatchCount != DefaultMatchCount || !f.Output.Heatmap {
		t.Error("unset keys should keep defaults")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, doc := range map[string]string{
		"syntax.yaml": "correlation: [",
		"tile.yaml":   "correlation:\n  tileSize: 0\n",
		"limit.yaml":  "output:\n  searchLimit: 150\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Errorf("LoadFile(%s) should fail", name)
		}
	}
}

func TestLoadFileUnknownMetricFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("correlation:\n  metric: TM_NOPE\n"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Correlation.Metric != metric.Default() {
		t.Errorf("metric = %v, want default", f.Correlation.Metric)
	}
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestCheckEnvironment(t *testing.T) {
	mode, err := checkEnvironment(env(map[string]string{"MODE": "DEBUG"}))
	if err != nil || mode != ModeDebug || !mode.Debug() {
		t.Errorf("DEBUG: %v, %v", mode, err)
	}
	mode, err = checkEnvironment(env(map[string]string{"MODE": "PROD"}))
	if err != nil || mode != ModeProd || mode.Debug() {
		t.Errorf("PROD: %v, %v", mode, err)
	}

	_, err = checkEnvironment(env(nil))
	var missing *MissingVariableError
	if !errors.As(err, &missing) || missing.Name != "MODE" {
		t.Errorf("missing: %v", err)
	}

	_, err = checkEnvironment(env(map[string]string{"MODE": "debug"}))
	var wrong *WrongVariableError
	if !errors.As(err, &wrong) || wrong.Value != "debug" {
		t.Errorf("wrong: %v", err)
	}
}

func TestCheckEnvironmentReadsProcess(t *testing.T) {
	t.Setenv("MODE", "PROD")
	if mode, err := CheckEnvironment(); err != nil || mode != ModeProd {
		t.Errorf("CheckEnvironment() = %v, %v", mode, err)
	}
}
