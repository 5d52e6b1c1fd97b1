// Package app provides application lifecycle management and events.
package app

import (
	"errors"
	"fmt"
	goimage "image"
	"log"
	"sync"

	"correlation-map/internal/artifact"
	"correlation-map/internal/config"
	"correlation-map/internal/correlation"
	"correlation-map/internal/image"
	"correlation-map/internal/pipeline"
	"correlation-map/internal/render"
	"correlation-map/pkg/colorutil"
)

// ErrNoMap is returned by Analyze before a correlation map has been built.
var ErrNoMap = errors.New("no correlation map built")

// State holds the artifact registry and the results of the last run.
type State struct {
	mu sync.RWMutex

	reg    *artifact.Registry
	runner *pipeline.Runner
	corr   *correlation.Map

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventArtifactAdded
	EventStageChanged
	EventMapBuilt
	EventRunFailed
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state with an empty registry.
func NewState() *State {
	s := &State{
		reg:       artifact.NewRegistry(),
		listeners: make(map[EventType][]EventListener),
	}
	s.reg.OnAdd(func(a artifact.Artifact) {
		s.Emit(EventArtifactAdded, a)
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Registry returns the artifact registry.
func (s *State) Registry() *artifact.Registry {
	return s.reg
}

// LoadImages loads the source and destination images from disk.
func (s *State) LoadImages(sourcePath, destinationPath string) error {
	src, err := image.Load(sourcePath, artifact.TagSource)
	if err != nil {
		return err
	}
	dst, err := image.Load(destinationPath, artifact.TagDestination)
	if err != nil {
		return err
	}
	for _, im := range []*image.Image{src, dst} {
		if err := s.addImage(im); err != nil {
			return err
		}
	}
	return nil
}

// SetImage stores an in-memory image under tag.
func (s *State) SetImage(pix goimage.Image, tag artifact.Tag) error {
	im, err := image.New(pix, tag)
	if err != nil {
		return err
	}
	return s.addImage(im)
}

func (s *State) addImage(im *image.Image) error {
	if err := s.reg.Add(im); err != nil {
		return err
	}
	log.Printf("Loaded %v", im)
	s.Emit(EventImageLoaded, im)
	return nil
}

// NewRunner plans a run over the loaded images and makes it the current
// run. Artifacts derived by an earlier run are dropped. Stepping is left to
// the caller.
func (s *State) NewRunner(cfg config.Correlation, proc pipeline.Processor) (*pipeline.Runner, error) {
	r, err := pipeline.NewRunner(cfg, s.reg, proc)
	if err != nil {
		return nil, err
	}
	s.reg.Retain(artifact.TagDefault, artifact.TagSource, artifact.TagDestination)
	s.mu.Lock()
	s.runner = r
	s.corr = nil
	s.mu.Unlock()
	return r, nil
}

// Run executes a full run, emitting EventStageChanged after every stage and
// EventMapBuilt at the end.
func (s *State) Run(cfg config.Correlation, proc pipeline.Processor) (*correlation.Map, error) {
	r, err := s.NewRunner(cfg, proc)
	if err != nil {
		return nil, err
	}
	m, err := r.RunAll(func(p pipeline.Progress) {
		s.Emit(EventStageChanged, p)
	})
	if err != nil {
		s.Emit(EventRunFailed, err)
		return nil, err
	}

	s.mu.Lock()
	s.corr = m
	s.mu.Unlock()
	s.Emit(EventMapBuilt, m)
	return m, nil
}

// Runner returns the current run, or nil.
func (s *State) Runner() *pipeline.Runner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runner
}

// Map returns the map built by the last completed run.
func (s *State) Map() (*correlation.Map, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.corr != nil {
		return s.corr, true
	}
	if s.runner != nil {
		return s.runner.Map()
	}
	return nil, false
}

// SaveArtifacts writes every stored image artifact to dir and returns the
// saved paths by tag.
func (s *State) SaveArtifacts(dir string) (map[artifact.Tag]string, error) {
	saved := make(map[artifact.Tag]string)
	for _, a := range s.reg.UserArtifacts() {
		im, ok := a.(*image.Image)
		if !ok {
			continue
		}
		path, err := im.Save(dir)
		if err != nil {
			return saved, fmt.Errorf("save %s: %w", im.Tag(), err)
		}
		saved[im.Tag()] = path
	}
	return saved, nil
}

// Compared returns the destination image the last map was built against.
func (s *State) Compared() (*image.Image, bool) {
	for _, tag := range []artifact.Tag{artifact.TagFoundAndCropped, artifact.TagRotated, artifact.TagDestination} {
		if !s.reg.Has(tag) {
			continue
		}
		return artifact.Lookup[*image.Image](s.reg, tag)
	}
	return nil, false
}

// Analyze flags the tiles of the last map whose dissimilarity reaches
// searchLimit percent and outlines them on the compared destination image.
func (s *State) Analyze(searchLimit int) ([]goimage.Rectangle, goimage.Image, error) {
	m, ok := s.Map()
	if !ok {
		return nil, nil, ErrNoMap
	}
	rects, err := m.Differences(searchLimit)
	if err != nil {
		return nil, nil, err
	}
	dst, ok := s.Compared()
	if !ok {
		return rects, nil, fmt.Errorf("no %s to mark", artifact.TagDestination)
	}
	log.Printf("Analyze: %d of %d tiles at or above %d%%", len(rects), len(m.Scores()), searchLimit)
	return rects, render.MarkRegions(dst.Pix, rects, colorutil.Red, 2), nil
}
