// Package pipeline sequences the stages of a correlation run and tracks
// weighted progress.
package pipeline

import (
	"fmt"

	"correlation-map/internal/config"
)

// StageID identifies a stage in the catalogue.
type StageID int

const (
	StageStart StageID = iota
	StageLoading
	StageScaleImage
	StageFindRotateAngle
	StageRotateImage
	StageFindImage
	StageMarkFoundImage
	StageCropFoundImage
	StageBuildCorrelationMap
	StageEnd

	stageCount
)

// Stage is a catalogue entry. Weight approximates the relative cost of the
// stage and drives the progress increments.
type Stage struct {
	ID      StageID
	Status  string
	Message string
	Weight  int
}

var catalogue = [stageCount]Stage{
	StageStart:               {StageStart, "start", "Waiting for user to click a button to start correlation map building", 0},
	StageLoading:             {StageLoading, "loading", "Loading source and destination images", 0},
	StageScaleImage:          {StageScaleImage, "scaling image", "Scaling source image according to user choice", 1},
	StageFindRotateAngle:     {StageFindRotateAngle, "finding rotate angle", "Finding rotate angle between source and destination images", 3},
	StageRotateImage:         {StageRotateImage, "rotating destination image", "Rotating destination image", 2},
	StageFindImage:           {StageFindImage, "find source image", "Finding source image in destination images", 3},
	StageMarkFoundImage:      {StageMarkFoundImage, "mark found image", "Marking found source image in destination image", 2},
	StageCropFoundImage:      {StageCropFoundImage, "crop found image", "Cropping found source image in destination image", 2},
	StageBuildCorrelationMap: {StageBuildCorrelationMap, "build correlation map", "Building correlation map", 20},
	StageEnd:                 {StageEnd, "end", "Correlation map built", 0},
}

// Valid reports whether id is in the catalogue.
func (id StageID) Valid() bool {
	return id >= 0 && id < stageCount
}

// Stage returns the catalogue entry for id.
func (id StageID) Stage() Stage {
	if !id.Valid() {
		return Stage{ID: id, Status: id.String()}
	}
	return catalogue[id]
}

func (id StageID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("StageID(%d)", int(id))
	}
	return catalogue[id].Status
}

func (s Stage) String() string {
	return s.Status
}

// Catalogue returns every stage in declaration order.
func Catalogue() []Stage {
	out := make([]Stage, stageCount)
	copy(out, catalogue[:])
	return out
}

// Plan returns the stages a run with cfg goes through.
func Plan(cfg config.Correlation) []Stage {
	ids := []StageID{StageStart, StageLoading}
	if cfg.CropToRegion {
		ids = append(ids, StageScaleImage)
	}
	if cfg.AutoRotate {
		ids = append(ids, StageFindRotateAngle, StageRotateImage)
	}
	if cfg.AutoLocate {
		ids = append(ids, StageFindImage, StageMarkFoundImage, StageCropFoundImage)
	}
	ids = append(ids, StageBuildCorrelationMap, StageEnd)

	stages := make([]Stage, len(ids))
	for i, id := range ids {
		stages[i] = id.Stage()
	}
	return stages
}
