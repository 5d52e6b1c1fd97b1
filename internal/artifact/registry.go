package artifact

import (
	"fmt"
	"log"
	"slices"
	"sync"
)

// Artifact is anything the registry can hold.
type Artifact interface {
	Tag() Tag
}

// Listener is called after an artifact has been stored.
type Listener func(a Artifact)

// Registry keeps the most recent artifact for every tag. Adding an artifact
// replaces any earlier artifact with the same tag.
type Registry struct {
	mu        sync.RWMutex
	items     map[Tag]Artifact
	listeners []Listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[Tag]Artifact)}
}

// OnAdd registers a listener that is called after every successful Add.
func (r *Registry) OnAdd(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Add stores a, replacing the previous artifact with the same tag.
func (r *Registry) Add(a Artifact) error {
	if a == nil {
		return fmt.Errorf("add artifact: nil artifact")
	}
	tag := a.Tag()
	if err := tag.Check(); err != nil {
		return fmt.Errorf("add artifact: %w", err)
	}

	r.mu.Lock()
	r.items[tag] = a
	listeners := r.listeners
	r.mu.Unlock()

	log.Printf("Registry: stored %q", tag)
	for _, l := range listeners {
		l(a)
	}
	return nil
}

// Retain drops every artifact whose tag is not in keep and returns the
// dropped tags in declaration order.
func (r *Registry) Retain(keep ...Tag) []Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dropped []Tag
	for _, t := range Tags() {
		if _, ok := r.items[t]; !ok || slices.Contains(keep, t) {
			continue
		}
		delete(r.items, t)
		dropped = append(dropped, t)
	}
	if len(dropped) > 0 {
		log.Printf("Registry: dropped %v", dropped)
	}
	return dropped
}

// Get returns the artifact stored under tag. A missing artifact is logged as
// a warning and reported with ok == false.
func (r *Registry) Get(tag Tag) (Artifact, bool) {
	r.mu.RLock()
	a, ok := r.items[tag]
	r.mu.RUnlock()
	if !ok {
		log.Printf("Warning: no artifact with tag %q in the registry", tag)
	}
	return a, ok
}

// Has reports whether an artifact is stored under tag, without logging.
func (r *Registry) Has(tag Tag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[tag]
	return ok
}

// Tags returns the tags currently stored, in declaration order.
func (r *Registry) Tags() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tags []Tag
	for _, t := range Tags() {
		if _, ok := r.items[t]; ok {
			tags = append(tags, t)
		}
	}
	return tags
}

// UserArtifacts returns all stored artifacts except the default one, in tag
// declaration order.
func (r *Registry) UserArtifacts() []Artifact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Artifact
	for _, t := range Tags() {
		if t == TagDefault {
			continue
		}
		if a, ok := r.items[t]; ok {
			out = append(out, a)
		}
	}
	return out
}

// HasUserArtifacts reports whether anything besides the default artifact is stored.
func (r *Registry) HasUserArtifacts() bool {
	return len(r.UserArtifacts()) > 0
}

// Lookup returns the artifact under tag as a T. It reports false if the tag
// is empty or holds a different type.
func Lookup[T Artifact](r *Registry, tag Tag) (T, bool) {
	var zero T
	a, ok := r.Get(tag)
	if !ok {
		return zero, false
	}
	v, ok := a.(T)
	if !ok {
		log.Printf("Warning: artifact %q has type %T", tag, a)
		return zero, false
	}
	return v, true
}
