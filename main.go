// Package main provides the entry point for the correlation map tool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"correlation-map/internal/app"
	"correlation-map/internal/artifact"
	"correlation-map/internal/config"
	"correlation-map/internal/correlation"
	"correlation-map/internal/logger"
	"correlation-map/internal/metric"
	"correlation-map/internal/pipeline"
	"correlation-map/internal/render"
	"correlation-map/internal/report"
	"correlation-map/internal/version"
	"correlation-map/internal/vision"
	"correlation-map/pkg/geometry"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	stageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "correlation.yaml", "Path to the YAML configuration file")
	source := flag.String("source", "", "Path to the source image")
	destination := flag.String("destination", "", "Path to the destination image")
	outDir := flag.String("out", "", "Output directory (overrides config)")
	metricName := flag.String("metric", "", "Metric name, e.g. TM_SQDIFF_NORMED")
	tileSize := flag.Int("tile", 0, "Tile size in pixels")
	matches := flag.Int("matches", 0, "Number of feature matches to draw")
	rotate := flag.Bool("rotate", false, "Estimate and undo the destination rotation")
	locate := flag.Bool("locate", false, "Find the source inside the destination")
	region := flag.String("region", "", "Crop the source to x1,y1,x2,y2 first")
	limit := flag.Int("limit", 0, "Difference search limit in percent, negative disables")
	heatmap := flag.Bool("heatmap", true, "Render the map as a heatmap")
	surface := flag.Bool("surface", false, "Render the map as a 3-D surface")
	writeReport := flag.Bool("report", true, "Write a JSON run report")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	mode, err := config.CheckEnvironment()
	if err != nil {
		log.Fatalf("Environment check failed: %v", err)
	}
	logger.Init(mode.Debug(), os.Stderr)
	log.Printf("Starting %s in %s mode", version.String(), mode)

	if *source == "" || *destination == "" {
		fmt.Println("Usage: correlation-map -source <image> -destination <image> [-config <file>] [-rotate] [-locate] [-region x1,y1,x2,y2]")
		os.Exit(1)
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line override the file
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Dir = *outDir
		case "metric":
			kind, err := metric.Parse(*metricName)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Correlation.Metric = kind
		case "tile":
			cfg.Correlation.TileSize = *tileSize
		case "matches":
			cfg.Correlation.MatchCount = *matches
		case "rotate":
			cfg.Correlation.AutoRotate = *rotate
		case "locate":
			cfg.Correlation.AutoLocate = *locate
		case "region":
			r, err := geometry.ParseRegion(*region)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Correlation.Region = r
			cfg.Correlation.CropToRegion = true
		case "limit":
			cfg.Output.SearchLimit = *limit
		case "heatmap":
			cfg.Output.Heatmap = *heatmap
		case "surface":
			cfg.Output.Surface = *surface
		case "report":
			cfg.Output.Report = *writeReport
		}
	})
	if flagErr != nil {
		log.Fatalf("Invalid flag: %v", flagErr)
	}
	logger.Debugf("Settings: %+v, output: %+v", cfg.Correlation, cfg.Output)

	state := app.NewState()
	state.On(app.EventArtifactAdded, func(data interface{}) {
		logger.Debugf("Artifact added: %v", data)
	})

	if err := state.LoadImages(*source, *destination); err != nil {
		log.Fatalf("Failed to load images: %v", err)
	}

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	state.On(app.EventStageChanged, func(data interface{}) {
		p := data.(pipeline.Progress)
		fmt.Printf("%s %s\n", bar.ViewAs(float64(p.Percent)/pipeline.MaxProgress), stageStyle.Render(p.Stage.Status))
	})
	fmt.Printf("%s %s\n", bar.ViewAs(0), stageStyle.Render(pipeline.StageStart.String()))

	m, runErr := state.Run(cfg.Correlation, vision.NewProcessor())

	rep := report.New(filepath.Base(*destination), cfg.Correlation)
	reportPath := filepath.Join(cfg.Output.Dir, "report.json")
	rep.SetSourceImage(reportPath, *source)
	rep.SetDestinationImage(reportPath, *destination)
	if r := state.Runner(); r != nil {
		var statuses []string
		for _, s := range r.Stages() {
			statuses = append(statuses, s.Status)
		}
		rep.SetStages(statuses)
		if angle, ok := r.Angle(); ok {
			rep.SetAngle(angle)
		}
		if found, ok := r.Found(); ok {
			rep.SetFoundRegion(found)
		}
	}

	if runErr != nil {
		fmt.Println(errStyle.Render("Run failed: " + runErr.Error()))
		rep.Error = runErr.Error()
	} else {
		st := m.Stats()
		fmt.Println(okStyle.Render(fmt.Sprintf("%v  min %.4g  max %.4g  mean %.4g  std %.4g", m, st.Min, st.Max, st.Mean, st.StdDev)))
		rep.SetMap(m)
	}

	saved, err := state.SaveArtifacts(cfg.Output.Dir)
	if err != nil {
		log.Printf("Failed to save artifacts: %v", err)
	}
	for tag, path := range saved {
		rep.SetArtifact(reportPath, tag, path)
	}

	if runErr == nil {
		writeRenders(state, m, cfg, rep, reportPath)
	}

	if cfg.Output.Report {
		if err := rep.Save(reportPath); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Report written to %s", reportPath)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// writeRenders saves the heatmap, the surface and the difference marks as
// configured.
func writeRenders(state *app.State, m *correlation.Map, cfg *config.File, rep *report.File, reportPath string) {
	dir := cfg.Output.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Failed to create %s: %v", dir, err)
		return
	}

	if cfg.Output.Heatmap {
		opts := render.DefaultHeatmapOptions()
		opts.Title = fmt.Sprintf("Correlation map (%s)", m.Metric().Label())
		if img, err := render.Heatmap(m, opts); err != nil {
			log.Printf("Heatmap failed: %v", err)
		} else {
			path := filepath.Join(dir, artifact.TagCorrelationMap.Slug()+".png")
			if err := render.Save(path, img); err != nil {
				log.Printf("Failed to save heatmap: %v", err)
			} else {
				rep.SetArtifact(reportPath, artifact.TagCorrelationMap, path)
			}
		}
	}

	if cfg.Output.Surface {
		if img, err := render.Surface(m, render.DefaultSurfaceOptions()); err != nil {
			log.Printf("Surface failed: %v", err)
		} else if err := render.Save(filepath.Join(dir, "correlation_surface.png"), img); err != nil {
			log.Printf("Failed to save surface: %v", err)
		}
	}

	if cfg.Output.SearchLimit >= 0 {
		rects, marked, err := state.Analyze(cfg.Output.SearchLimit)
		if err != nil {
			log.Printf("Difference analysis failed: %v", err)
			return
		}
		rep.SetDifferences(cfg.Output.SearchLimit, rects)
		fmt.Printf("%d tiles differ by %d%% or more\n", len(rects), cfg.Output.SearchLimit)
		if marked != nil {
			if err := render.Save(filepath.Join(dir, "differences.png"), marked); err != nil {
				log.Printf("Failed to save differences: %v", err)
			}
		}
	}
}
