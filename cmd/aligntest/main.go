// Command aligntest estimates the rotation of a destination image relative
// to a source image, optionally locates the source in it, and prints results.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"correlation-map/internal/alignment"
	"correlation-map/internal/artifact"
	imgpkg "correlation-map/internal/image"
	"correlation-map/internal/metric"
	"correlation-map/internal/vision"
	"correlation-map/pkg/geometry"
)

func main() {
	source := flag.String("s", "", "Path to source image")
	destination := flag.String("d", "", "Path to destination image")
	doLocate := flag.Bool("locate", false, "Locate the source in the rotated destination")
	metricName := flag.String("metric", metric.Default().Name(), "Template matching metric")
	matches := flag.Int("matches", 5, "Number of matches to draw")
	out := flag.String("out", "", "Directory for the match and mark images")
	fallback := flag.String("fallback", "rigid", "Fit used when no homography is found: rigid or affine")
	flag.Parse()

	if *source == "" || *destination == "" {
		fmt.Println("Usage: aligntest -s <source> -d <destination> [-locate] [-metric TM_CCOEFF_NORMED] [-fallback rigid|affine] [-out dir]")
		os.Exit(1)
	}

	src, err := imgpkg.Load(*source, artifact.TagSource)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load source: %v\n", err)
		os.Exit(1)
	}
	dst, err := imgpkg.Load(*destination, artifact.TagDestination)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load destination: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Source:      %v\nDestination: %v\n", src, dst)

	proc := vision.NewProcessor()
	model, err := alignment.ParseModel(*fallback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	proc.Fallback.Model = model

	fmt.Printf("\n=== Rotation ===\n")
	angle, vis, err := proc.EstimateRotation(src.Pix, dst.Pix, *matches)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rotation estimate failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rotation: %.4f°\n", angle)
	save(dst, vis, artifact.TagDetected, *out)

	rotatedPix, err := proc.Rotate(dst.Pix, angle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rotate failed: %v\n", err)
		os.Exit(1)
	}
	rotated := save(dst, rotatedPix, artifact.TagRotated, *out)

	if !*doLocate {
		return
	}

	kind, err := metric.Parse(*metricName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Locate (%s) ===\n", kind.Label())
	region, err := proc.Locate(src.Pix, rotated.Pix, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Locate failed: %v\n", err)
		os.Exit(1)
	}
	printRegion(region)

	marked, err := proc.Mark(rotated.Pix, region)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mark failed: %v\n", err)
		os.Exit(1)
	}
	save(rotated, marked, artifact.TagFound, *out)
}

func save(parent *imgpkg.Image, pix image.Image, tag artifact.Tag, dir string) *imgpkg.Image {
	im, err := parent.Derive(pix, tag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", tag, err)
		os.Exit(1)
	}
	if dir == "" {
		return im
	}
	path, err := im.Save(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save %s: %v\n", tag, err)
		return im
	}
	fmt.Printf("Saved %s\n", filepath.Base(path))
	return im
}

func printRegion(r geometry.Region) {
	fmt.Printf("Found: %v\n", r)
	fmt.Printf("  top left:     %v\n", r.TopLeft())
	fmt.Printf("  bottom right: %v\n", r.BottomRight())
	fmt.Printf("  size:         %dx%d\n", r.Width(), r.Height())
}
