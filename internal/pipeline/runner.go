package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log"

	"correlation-map/internal/artifact"
	"correlation-map/internal/config"
	"correlation-map/internal/correlation"
	imgpkg "correlation-map/internal/image"
	"correlation-map/internal/logger"
	"correlation-map/internal/metric"
	"correlation-map/pkg/geometry"
)

// ErrFinished is returned by Step once the run has reached its last stage.
var ErrFinished = errors.New("pipeline: run already finished")

// Processor provides the computer vision steps of a run.
type Processor interface {
	// EstimateRotation returns the rotation of dst relative to src in degrees
	// and an image visualizing the matches used.
	EstimateRotation(src, dst image.Image, matchCount int) (float64, image.Image, error)

	// Rotate rotates img about its centre, keeping its size.
	Rotate(img image.Image, angle float64) (image.Image, error)

	// Locate returns the region of dst that best matches src.
	Locate(src, dst image.Image, kind metric.Kind) (geometry.Region, error)

	// Mark returns a copy of img with region outlined.
	Mark(img image.Image, region geometry.Region) (image.Image, error)
}

// Runner executes the planned stages one at a time. Each Step does the work
// of the next stage, stores what it produced in the registry and advances
// the run. A failed step leaves the runner failed.
type Runner struct {
	cfg  config.Correlation
	reg  *artifact.Registry
	proc Processor
	run  *Run

	src *imgpkg.Image
	dst *imgpkg.Image

	angle   float64
	rotated bool
	found   geometry.Region
	located bool
	corrMap *correlation.Map
	err     error
}

// NewRunner validates cfg and plans a run. proc may be nil when neither
// rotation nor localization is requested.
func NewRunner(cfg config.Correlation, reg *artifact.Registry, proc Processor) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid correlation settings: %w", err)
	}
	if reg == nil {
		return nil, errors.New("pipeline: nil registry")
	}
	if proc == nil && (cfg.AutoRotate || cfg.AutoLocate) {
		return nil, errors.New("pipeline: rotation and localization need an image processor")
	}

	run, err := NewRun(Plan(cfg))
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, reg: reg, proc: proc, run: run}, nil
}

// Stages returns the planned stages.
func (r *Runner) Stages() []Stage {
	return r.run.Stages()
}

// Progress returns the current stage and progress.
func (r *Runner) Progress() Progress {
	return r.run.Current()
}

// Next returns the stage the following Step will execute.
func (r *Runner) Next() (Stage, bool) {
	if r.err != nil {
		return Stage{}, false
	}
	return r.run.Next()
}

// Done reports whether the run has completed successfully.
func (r *Runner) Done() bool {
	return r.err == nil && r.run.Done()
}

// Err returns the error that stopped the run, if any.
func (r *Runner) Err() error {
	return r.err
}

// Step executes the next stage.
func (r *Runner) Step() (Progress, error) {
	if r.err != nil {
		return r.run.Current(), r.err
	}
	next, ok := r.run.Next()
	if !ok {
		return r.run.Current(), ErrFinished
	}

	log.Printf("Correlation pipeline: %s", next.Message)
	if err := r.execute(next.ID); err != nil {
		r.err = fmt.Errorf("stage %q: %w", next.Status, err)
		log.Printf("Correlation pipeline: %v", r.err)
		return r.run.Current(), r.err
	}

	p, _ := r.run.Advance()
	logger.Debugf("Correlation pipeline: current stage - %s, pipeline progress - %d/%d",
		p.Stage.Status, p.Percent, MaxProgress)
	return p, nil
}

// RunAll steps until the run is finished, calling onProgress after every
// step, and returns the built map.
func (r *Runner) RunAll(onProgress func(Progress)) (*correlation.Map, error) {
	for !r.run.Done() {
		p, err := r.Step()
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(p)
		}
	}
	m, ok := r.Map()
	if !ok {
		return nil, errors.New("pipeline: run finished without a correlation map")
	}
	return m, nil
}

// Map returns the correlation map of a completed run.
func (r *Runner) Map() (*correlation.Map, bool) {
	if !r.Done() || r.corrMap == nil {
		return nil, false
	}
	return r.corrMap, true
}

// Angle returns the estimated rotation, if the run has estimated one.
func (r *Runner) Angle() (float64, bool) {
	return r.angle, r.rotated
}

// Found returns the located region, if the run has located the source.
func (r *Runner) Found() (geometry.Region, bool) {
	return r.found, r.located
}

func (r *Runner) execute(id StageID) error {
	switch id {
	case StageStart, StageEnd:
		return nil

	case StageLoading:
		src, ok := artifact.Lookup[*imgpkg.Image](r.reg, artifact.TagSource)
		if !ok {
			return fmt.Errorf("no %s loaded", artifact.TagSource)
		}
		dst, ok := artifact.Lookup[*imgpkg.Image](r.reg, artifact.TagDestination)
		if !ok {
			return fmt.Errorf("no %s loaded", artifact.TagDestination)
		}
		r.src, r.dst = src, dst
		return nil

	case StageScaleImage:
		pix, err := imgpkg.Crop(r.src.Pix, r.cfg.Region.Rect())
		if err != nil {
			return err
		}
		cropped, err := r.store(r.src, pix, artifact.TagCropped)
		if err != nil {
			return err
		}
		r.src = cropped
		return nil

	case StageFindRotateAngle:
		angle, vis, err := r.proc.EstimateRotation(r.src.Pix, r.dst.Pix, r.cfg.MatchCount)
		if err != nil {
			return err
		}
		if _, err := r.store(r.dst, vis, artifact.TagDetected); err != nil {
			return err
		}
		r.angle, r.rotated = angle, true
		log.Printf("Correlation pipeline: rotation angle %.2f°", angle)
		return nil

	case StageRotateImage:
		pix, err := r.proc.Rotate(r.dst.Pix, r.angle)
		if err != nil {
			return err
		}
		rotated, err := r.store(r.dst, pix, artifact.TagRotated)
		if err != nil {
			return err
		}
		r.dst = rotated
		return nil

	case StageFindImage:
		region, err := r.proc.Locate(r.src.Pix, r.dst.Pix, r.cfg.Metric)
		if err != nil {
			return err
		}
		r.found, r.located = region, true
		log.Printf("Correlation pipeline: source found at %v", region)
		return nil

	case StageMarkFoundImage:
		pix, err := r.proc.Mark(r.dst.Pix, r.found)
		if err != nil {
			return err
		}
		_, err = r.store(r.dst, pix, artifact.TagFound)
		return err

	case StageCropFoundImage:
		pix, err := imgpkg.Crop(r.dst.Pix, r.found.Rect())
		if err != nil {
			return err
		}
		cropped, err := r.store(r.dst, pix, artifact.TagFoundAndCropped)
		if err != nil {
			return err
		}
		r.dst = cropped
		return nil

	case StageBuildCorrelationMap:
		m, err := correlation.BuildFromImages(r.src.Pix, r.dst.Pix, r.cfg.Metric, r.cfg.TileSize)
		if err != nil {
			return err
		}
		if err := r.reg.Add(m); err != nil {
			return err
		}
		r.corrMap = m
		log.Printf("Correlation pipeline: %v", m)
		return nil
	}
	return fmt.Errorf("unknown stage %v", id)
}

func (r *Runner) store(parent *imgpkg.Image, pix image.Image, tag artifact.Tag) (*imgpkg.Image, error) {
	out, err := parent.Derive(pix, tag)
	if err != nil {
		return nil, err
	}
	if err := r.reg.Add(out); err != nil {
		return nil, err
	}
	return out, nil
}
