package loader

import (
	"sync"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Stats describes the current model and the slot's load history.
type Stats struct {
	Path     string
	Kind     Kind
	Vertices int
	Faces    int
	Loads    int // successful loads
	Failures int
}

// Slot holds the model currently shown. A failed load leaves the previous
// model in place. Loads are serialized.
type Slot struct {
	mu      sync.Mutex
	loader  *Loader
	current *mesh.Mesh
	stats   Stats
}

// NewSlot creates an empty slot that loads through l.
func NewSlot(l *Loader) *Slot {
	return &Slot{loader: l}
}

// Load reads path and makes it current. It reports whether the model was
// replaced.
func (s *Slot) Load(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loader.Load(path)
	if err != nil {
		s.stats.Failures++
		return false
	}

	if path == "" {
		path = s.loader.cfg.DefaultModel
	}
	s.current = m
	s.stats.Path = path
	s.stats.Kind = DetectKind(path)
	s.stats.Vertices = m.VertexCount()
	s.stats.Faces = m.FaceCount()
	s.stats.Loads++
	return true
}

// Current returns the current model, or nil before the first successful load.
// The mesh must not be modified.
func (s *Slot) Current() *mesh.Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Stats returns a snapshot of the slot state.
func (s *Slot) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
