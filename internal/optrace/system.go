package optrace

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// OpticalSystem owns the coordinate graph and the elements. Traces hold the read
// lock for their whole duration; every structural change goes through the write lock.
type OpticalSystem struct {
	mu         sync.RWMutex
	graph      *CoordinateGraph
	order      []string
	elements   map[string]*OpticalElement
	background Material
	logger     *slog.Logger
	metrics    *TraceMetrics
}

type SystemOption func(*systemOptions)

type systemOptions struct {
	rootName   string
	background Material
	logger     *slog.Logger
	metrics    *TraceMetrics
}

func WithLogger(l *slog.Logger) SystemOption   { return func(o *systemOptions) { o.logger = l } }
func WithMetrics(m *TraceMetrics) SystemOption { return func(o *systemOptions) { o.metrics = m } }
func WithRootName(name string) SystemOption    { return func(o *systemOptions) { o.rootName = name } }
func WithBackground(m Material) SystemOption   { return func(o *systemOptions) { o.background = m } }

func NewOpticalSystem(opts ...SystemOption) *OpticalSystem {
	o := systemOptions{rootName: DefaultRootName}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OpticalSystem{
		graph:      NewCoordinateGraph(o.rootName),
		elements:   map[string]*OpticalElement{},
		background: o.background,
		logger:     o.logger,
		metrics:    o.metrics,
	}
}

func (s *OpticalSystem) Root() *LocalCoordinates       { return s.graph.Root() }
func (s *OpticalSystem) Coordinates() *CoordinateGraph { return s.graph }
func (s *OpticalSystem) Logger() *slog.Logger          { return s.logger }

// Background is the medium used where a surface names no material (vacuum unless set).
func (s *OpticalSystem) Background() Material {
	if s.background == nil {
		return Vacuum()
	}
	return s.background
}

// AddLocalCoordinateSystem registers a frame under refname; empty refname means the root.
func (s *OpticalSystem) AddLocalCoordinateSystem(spec FrameSpec, refname string) (*LocalCoordinates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lc, err := s.graph.add(spec, refname)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("frame added", "name", lc.Name(), "parent", lc.Parent())
	return lc, nil
}

// ReparentLocalCoordinateSystem moves a frame under a new parent, rejecting cycles.
func (s *OpticalSystem) ReparentLocalCoordinateSystem(name, parent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.reparent(name, parent)
}

// UpdateFrame replaces a frame's placement; every surface on it moves with it.
func (s *OpticalSystem) UpdateFrame(name string, spec FrameSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.update(name, spec)
}

// AddElement takes ownership of e and freezes it. Its frame and all its surfaces
// must belong to this system.
func (s *OpticalSystem) AddElement(e *OpticalElement) error {
	if e == nil {
		return fmt.Errorf("nil element: %w", ErrInvalidConfig)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elements[e.name]; ok {
		return fmt.Errorf("element %q: %w", e.name, ErrDuplicateName)
	}
	if !e.lc.sameGraph(s.graph) {
		return fmt.Errorf("element %q is not rooted in this system: %w", e.name, ErrUnknownReference)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen {
		return fmt.Errorf("element %q already belongs to a system: %w", e.name, ErrInvalidConfig)
	}
	for _, name := range e.order {
		if !e.surfaces[name].LC.sameGraph(s.graph) {
			return fmt.Errorf("element %q surface %q is not rooted in this system: %w", e.name, name, ErrUnknownReference)
		}
	}
	e.frozen = true
	s.order = append(s.order, e.name)
	s.elements[e.name] = e
	s.logger.Debug("element added", "name", e.name, "surfaces", len(e.order))
	return nil
}

func (s *OpticalSystem) Element(name string) (*OpticalElement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elements[name]
	return e, ok
}

// ElementNames is in insertion order.
func (s *OpticalSystem) ElementNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
