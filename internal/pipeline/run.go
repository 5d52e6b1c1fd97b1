package pipeline

import (
	"errors"
	"math"
)

// MaxProgress is the progress of a finished run.
const MaxProgress = 100

// Progress is a snapshot of a run.
type Progress struct {
	Stage   Stage
	Index   int // Position of Stage in the plan
	Percent int // Cumulative progress in [0, MaxProgress]
}

// Run walks an ordered list of stages and accumulates progress. A new run is
// positioned at its first stage with zero progress.
type Run struct {
	stages   []Stage
	index    int
	progress int
	total    int
}

// NewRun creates a run over stages.
func NewRun(stages []Stage) (*Run, error) {
	if len(stages) == 0 {
		return nil, errors.New("pipeline: empty stage plan")
	}
	r := &Run{stages: append([]Stage(nil), stages...)}
	for _, s := range stages {
		if s.Weight < 0 {
			return nil, errors.New("pipeline: negative stage weight")
		}
		r.total += s.Weight
	}
	return r, nil
}

// StepSize returns the progress added when s is entered:
// round(weight * MaxProgress / sum of planned weights).
func (r *Run) StepSize(s Stage) int {
	if r.total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Weight) * MaxProgress / float64(r.total)))
}

// Advance enters the next stage and returns the new progress. Entering the
// last stage sets progress to exactly MaxProgress. At the last stage Advance
// returns false and changes nothing.
func (r *Run) Advance() (Progress, bool) {
	if r.Done() {
		return r.Current(), false
	}
	r.index++
	if r.index == len(r.stages)-1 {
		r.progress = MaxProgress
	} else {
		r.progress = min(r.progress+r.StepSize(r.stages[r.index]), MaxProgress)
	}
	return r.Current(), true
}

// Next returns the stage Advance would enter.
func (r *Run) Next() (Stage, bool) {
	if r.Done() {
		return Stage{}, false
	}
	return r.stages[r.index+1], true
}

// Current returns the current stage and progress.
func (r *Run) Current() Progress {
	return Progress{Stage: r.stages[r.index], Index: r.index, Percent: r.progress}
}

// Done reports whether the run is at its last stage.
func (r *Run) Done() bool {
	return r.index == len(r.stages)-1
}

// Stages returns a copy of the plan.
func (r *Run) Stages() []Stage {
	return append([]Stage(nil), r.stages...)
}

// Reset moves the run back to its first stage with zero progress.
func (r *Run) Reset() {
	r.index = 0
	r.progress = 0
}
