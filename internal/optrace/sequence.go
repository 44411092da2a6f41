package optrace

import (
	"fmt"
	"strings"
)

// StepOptions modify how one surface step is traced.
type StepOptions struct {
	// IsStop marks the aperture stop. A stop without a shape is a marker only.
	IsStop bool `json:"is_stop,omitempty" yaml:"is_stop,omitempty"`
	// IsMirror reflects instead of refracting, inside the medium before the surface.
	IsMirror bool `json:"is_mirror,omitempty" yaml:"is_mirror,omitempty"`
}

type SurfaceStep struct {
	Surface string      `json:"surface" yaml:"surface" validate:"required"`
	Options StepOptions `json:"options" yaml:"options"`
}

type ElementSequence struct {
	Element string        `json:"element" yaml:"element" validate:"required"`
	Steps   []SurfaceStep `json:"steps" yaml:"steps" validate:"required,min=1,dive"`
}

// Sequence is the traversal order for one trace; it is not owned by the system.
type Sequence []ElementSequence

// Len counts surface steps.
func (q Sequence) Len() int {
	n := 0
	for _, e := range q {
		n += len(e.Steps)
	}
	return n
}

// HasStop reports whether any step is marked IsStop.
func (q Sequence) HasStop() bool {
	for _, e := range q {
		for _, st := range e.Steps {
			if st.Options.IsStop {
				return true
			}
		}
	}
	return false
}

func (q Sequence) String() string {
	var sb strings.Builder
	for i, e := range q {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(e.Element)
		sb.WriteString(":")
		for j, st := range e.Steps {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(st.Surface)
			if st.Options.IsStop {
				sb.WriteString("[stop]")
			}
			if st.Options.IsMirror {
				sb.WriteString("[mirror]")
			}
		}
	}
	return sb.String()
}

// resolvedStep is one surface step with every name and index looked up.
type resolvedStep struct {
	element    string
	surface    string
	opts       StepOptions
	s          *Surface
	before     Material
	after      Material
	nBefore    complex128
	nAfter     complex128
	markerOnly bool
}

// resolve checks the sequence against the system and resolves indices at the
// given wavelength. b may be nil. Caller holds the read lock.
func (s *OpticalSystem) resolve(seq Sequence, b *RayBundle, wavelength Real) ([]resolvedStep, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty sequence: %w", ErrInvalidConfig)
	}
	steps := make([]resolvedStep, 0, seq.Len())
	for _, es := range seq {
		e, ok := s.elements[es.Element]
		if !ok {
			return nil, fmt.Errorf("element %q: %w", es.Element, ErrUnknownReference)
		}
		for _, st := range es.Steps {
			surf, ok := e.Surface(st.Surface)
			if !ok {
				return nil, fmt.Errorf("element %q surface %q: %w", es.Element, st.Surface, ErrUnknownReference)
			}
			before, after := e.media(st.Surface)
			if before == nil {
				before = s.Background()
			}
			if after == nil {
				after = s.Background()
			}
			r := resolvedStep{
				element:    es.Element,
				surface:    st.Surface,
				opts:       st.Options,
				s:          surf,
				before:     before,
				after:      after,
				markerOnly: st.Options.IsStop && !surf.HasShape(),
			}
			var err error
			if r.nBefore, err = indexOf(before, b, wavelength); err != nil {
				return nil, fmt.Errorf("element %q surface %q: %w", es.Element, st.Surface, err)
			}
			if r.nAfter, err = indexOf(after, b, wavelength); err != nil {
				return nil, fmt.Errorf("element %q surface %q: %w", es.Element, st.Surface, err)
			}
			steps = append(steps, r)
		}
	}
	return steps, nil
}

// Validate reports the first unknown element or surface in seq.
func (s *OpticalSystem) Validate(seq Sequence) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, es := range seq {
		e, ok := s.elements[es.Element]
		if !ok {
			return fmt.Errorf("element %q: %w", es.Element, ErrUnknownReference)
		}
		for _, st := range es.Steps {
			if _, ok := e.Surface(st.Surface); !ok {
				return fmt.Errorf("element %q surface %q: %w", es.Element, st.Surface, ErrUnknownReference)
			}
		}
	}
	return nil
}
