package optrace

// Segment is the bundle leaving one surface step, in global coordinates.
// Rays that are not alive keep the position, wavevector and field they had
// when they were last valid.
type Segment struct {
	Element string
	Surface string
	Options StepOptions
	Bundle  *RayBundle
	// T is the distance travelled to this surface, zero for rays not alive.
	T       []Real
	surface *Surface
}

// SurfaceRef returns the surface hit in this segment, for its coordinate transforms.
func (s *Segment) SurfaceRef() *Surface { return s.surface }

// LocalHitPoints returns the segment positions in the surface's own frame.
func (s *Segment) LocalHitPoints() Vec3s {
	return s.surface.LC.GlobalToLocalPoints(s.Bundle.X)
}

// LocalDirections returns ray directions in the surface's own frame.
func (s *Segment) LocalDirections() Vec3s {
	return s.surface.LC.GlobalToLocalDirections(s.Bundle.Directions())
}

// RayPath is the record of one sequential trace. It is read-only.
type RayPath struct {
	Initial  *RayBundle
	Segments []Segment
}

func (p *RayPath) Len() int { return len(p.Segments) }

// Last returns the final bundle, or the initial one when nothing was traced.
func (p *RayPath) Last() *RayBundle {
	if len(p.Segments) == 0 {
		return p.Initial
	}
	return p.Segments[len(p.Segments)-1].Bundle
}

// Find returns the first segment for the given element and surface.
func (p *RayPath) Find(element, surface string) (*Segment, bool) {
	for i := range p.Segments {
		if p.Segments[i].Element == element && p.Segments[i].Surface == surface {
			return &p.Segments[i], true
		}
	}
	return nil, false
}

// SegmentsFor lists all visits of a surface; a mirror sequence may pass one twice.
func (p *RayPath) SegmentsFor(element, surface string) []*Segment {
	var out []*Segment
	for i := range p.Segments {
		if p.Segments[i].Element == element && p.Segments[i].Surface == surface {
			out = append(out, &p.Segments[i])
		}
	}
	return out
}

// StopSegment returns the first step flagged as the aperture stop.
func (p *RayPath) StopSegment() (*Segment, bool) {
	for i := range p.Segments {
		if p.Segments[i].Options.IsStop {
			return &p.Segments[i], true
		}
	}
	return nil, false
}

// Stats counts ray fates at the end of the path.
func (p *RayPath) Stats() PathStats { return p.Last().Stats() }
