// Command reportinfo prints a saved run report and checks that the images it
// refers to are still on disk.
package main

import (
	"flag"
	"fmt"
	"os"

	"correlation-map/internal/artifact"
	"correlation-map/internal/report"
)

func main() {
	path := flag.String("r", "", "Path to report.json")
	flag.Parse()

	if *path == "" {
		fmt.Println("Usage: reportinfo -r <report.json>")
		os.Exit(1)
	}

	rep, err := report.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== %s ===\n", rep.Name)
	fmt.Printf("Tool:     %s (report v%d)\n", rep.Tool, rep.Version)
	fmt.Printf("Created:  %s\n", rep.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("Metric:   %s, tile %d\n", rep.Settings.Metric.Label(), rep.Settings.TileSize)

	missing := 0
	missing += printPath("Source", rep.GetSourceImagePath(*path))
	missing += printPath("Destination", rep.GetDestinationImagePath(*path))

	if len(rep.Stages) > 0 {
		fmt.Printf("\nStages: %v\n", rep.Stages)
	}
	if rep.RotationAngle != nil {
		fmt.Printf("Rotation: %.4f°\n", *rep.RotationAngle)
	}
	if rep.FoundRegion != nil {
		fmt.Printf("Found:    %v\n", *rep.FoundRegion)
	}
	if m := rep.Map; m != nil {
		fmt.Printf("Map:      %dx%d %s, min %.4g max %.4g mean %.4g std %.4g\n",
			m.Rows, m.Cols, m.Metric, m.Stats.Min, m.Stats.Max, m.Stats.Mean, m.Stats.StdDev)
	}
	if rep.Differences != nil {
		fmt.Printf("Differences: %d tiles at %d%%\n", len(rep.Differences), rep.SearchLimit)
	}
	if rep.Error != "" {
		fmt.Printf("Error:    %s\n", rep.Error)
	}

	fmt.Printf("\nArtifacts:\n")
	for _, tag := range artifact.Tags() {
		if p := rep.ArtifactPath(*path, tag); p != "" {
			missing += printPath("  "+tag.String(), p)
		}
	}

	if missing > 0 {
		fmt.Fprintf(os.Stderr, "\n%d referenced files missing\n", missing)
		os.Exit(1)
	}
}

// printPath prints p and returns 1 if it does not exist.
func printPath(label, p string) int {
	if p == "" {
		return 0
	}
	if _, err := os.Stat(p); err != nil {
		fmt.Printf("%-12s %s (missing)\n", label+":", p)
		return 1
	}
	fmt.Printf("%-12s %s\n", label+":", p)
	return 0
}
