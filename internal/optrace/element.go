package optrace

import (
	"fmt"
	"sync"
)

// MaterialPair names the media on both sides of a surface, in trace order.
// An empty name means the background medium.
type MaterialPair struct {
	Before string `json:"before,omitempty" yaml:"before,omitempty"`
	After  string `json:"after,omitempty" yaml:"after,omitempty"`
}

// OpticalElement is a named group of surfaces sharing a material table.
// It is frozen once added to an OpticalSystem: later AddSurface and AddMaterial
// calls fail, so running traces never see it change.
type OpticalElement struct {
	mu        sync.RWMutex
	frozen    bool
	name      string
	lc        *LocalCoordinates
	order     []string
	surfaces  map[string]*Surface
	pairs     map[string]MaterialPair
	materials map[string]Material
}

func NewOpticalElement(lc *LocalCoordinates, name string) (*OpticalElement, error) {
	if lc == nil {
		return nil, fmt.Errorf("element %q needs a coordinate system: %w", name, ErrInvalidConfig)
	}
	if name == "" {
		return nil, fmt.Errorf("element needs a name: %w", ErrInvalidConfig)
	}
	return &OpticalElement{
		name:      name,
		lc:        lc,
		surfaces:  map[string]*Surface{},
		pairs:     map[string]MaterialPair{},
		materials: map[string]Material{},
	}, nil
}

func (e *OpticalElement) Name() string                   { return e.name }
func (e *OpticalElement) Coordinates() *LocalCoordinates { return e.lc }

// AddMaterial registers m under key, the name surfaces use to refer to it.
func (e *OpticalElement) AddMaterial(key string, m Material) error {
	if m == nil || key == "" {
		return fmt.Errorf("element %q: material needs a key and a value: %w", e.name, ErrInvalidConfig)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen {
		return fmt.Errorf("element %q is part of a system, material %q: %w", e.name, key, ErrInvalidConfig)
	}
	if _, ok := e.materials[key]; ok {
		return fmt.Errorf("element %q material %q: %w", e.name, key, ErrDuplicateName)
	}
	e.materials[key] = m
	return nil
}

// AddSurface appends a surface. Both material names must already be registered
// (or be empty for the background medium).
func (e *OpticalElement) AddSurface(name string, s *Surface, pair MaterialPair) error {
	if s == nil || name == "" {
		return fmt.Errorf("element %q: surface needs a name and a value: %w", e.name, ErrInvalidConfig)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen {
		return fmt.Errorf("element %q is part of a system, surface %q: %w", e.name, name, ErrInvalidConfig)
	}
	if _, ok := e.surfaces[name]; ok {
		return fmt.Errorf("element %q surface %q: %w", e.name, name, ErrDuplicateName)
	}
	if !s.LC.sameGraph(e.lc.g) {
		return fmt.Errorf("element %q surface %q lives in a different coordinate graph: %w", e.name, name, ErrUnknownReference)
	}
	for _, m := range []string{pair.Before, pair.After} {
		if m == "" {
			continue
		}
		if _, ok := e.materials[m]; !ok {
			return fmt.Errorf("element %q surface %q material %q: %w", e.name, name, m, ErrUnknownReference)
		}
	}
	e.order = append(e.order, name)
	e.surfaces[name] = s
	e.pairs[name] = pair
	return nil
}

func (e *OpticalElement) Surface(name string) (*Surface, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.surfaces[name]
	return s, ok
}

// SurfaceNames is in insertion order.
func (e *OpticalElement) SurfaceNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *OpticalElement) Material(name string) (Material, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.materials[name]
	return m, ok
}

func (e *OpticalElement) Pair(surface string) (MaterialPair, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.pairs[surface]
	return p, ok
}

// media resolves a surface's material pair; nil means background.
func (e *OpticalElement) media(surface string) (before, after Material) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p := e.pairs[surface]
	if p.Before != "" {
		before = e.materials[p.Before]
	}
	if p.After != "" {
		after = e.materials[p.After]
	}
	return before, after
}

// Frozen reports whether the element belongs to a system.
func (e *OpticalElement) Frozen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frozen
}
