package report

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"correlation-map/internal/artifact"
	"correlation-map/internal/config"
	"correlation-map/internal/correlation"
	"correlation-map/internal/metric"
	"correlation-map/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "report.json")

	settings := config.Default()
	settings.AutoLocate = true
	settings.Metric = metric.CCoeffNormed

	src := mat.NewDense(4, 4, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	m, err := correlation.Build(src, src, metric.SqDiff, 2)
	if err != nil {
		t.Fatal(err)
	}

	f := New("run", settings)
	f.SetSourceImage(path, filepath.Join(dir, "in", "a.png"))
	f.SetDestinationImage(path, filepath.Join(dir, "in", "b.png"))
	f.SetArtifact(path, artifact.TagCorrelationMap, filepath.Join(dir, "out", "correlation_map.png"))
	f.SetStages([]string{"start", "end"})
	f.SetAngle(-3.5)
	f.SetFoundRegion(geometry.NewRegion(1, 2, 3, 4))
	f.SetMap(m)
	f.SetDifferences(80, []image.Rectangle{image.Rect(0, 0, 2, 2)})

	if f.SourceImage != filepath.Join("..", "in", "a.png") {
		t.Errorf("SourceImage = %q", f.SourceImage)
	}
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "run" || got.Version != FormatVersion {
		t.Errorf("header = %q v%d", got.Name, got.Version)
	}
	if got.Settings != settings {
		t.Errorf("settings = %+v, want %+v", got.Settings, settings)
	}
	if got.GetSourceImagePath(path) != filepath.Join(dir, "in", "a.png") {
		t.Errorf("source path = %q", got.GetSourceImagePath(path))
	}
	if got.GetDestinationImagePath(path) != filepath.Join(dir, "in", "b.png") {
		t.Errorf("destination path = %q", got.GetDestinationImagePath(path))
	}
	if got.ArtifactPath(path, artifact.TagCorrelationMap) != filepath.Join(dir, "out", "correlation_map.png") {
		t.Errorf("artifact path = %q", got.ArtifactPath(path, artifact.TagCorrelationMap))
	}
	if got.ArtifactPath(path, artifact.TagRotated) != "" {
		t.Error("unsaved artifact should have no path")
	}
	if got.RotationAngle == nil || *got.RotationAngle != -3.5 {
		t.Errorf("angle = %v", got.RotationAngle)
	}
	if got.FoundRegion == nil || *got.FoundRegion != geometry.NewRegion(1, 2, 3, 4) {
		t.Errorf("found = %v", got.FoundRegion)
	}
	if got.Map == nil || got.Map.Rows != 2 || got.Map.Cols != 2 || got.Map.Metric != metric.SqDiff || got.Map.TileSize != 2 {
		t.Errorf("map = %+v", got.Map)
	}
	if len(got.Differences) != 1 || got.Differences[0] != geometry.NewRegion(0, 0, 2, 2) || got.SearchLimit != 80 {
		t.Errorf("differences = %v (limit %d)", got.Differences, got.SearchLimit)
	}
	if len(got.Stages) != 2 {
		t.Errorf("stages = %v", got.Stages)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("bad json should fail")
	}

	future := filepath.Join(dir, "future.json")
	if err := os.WriteFile(future, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(future); err == nil {
		t.Error("newer version should fail")
	}
}

func TestAbsolutePathsKept(t *testing.T) {
	f := New("x", config.Default())
	f.SourceImage = "/abs/a.png"
	if got := f.GetSourceImagePath("/elsewhere/report.json"); got != "/abs/a.png" {
		t.Errorf("path = %q", got)
	}
}
