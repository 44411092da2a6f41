package optrace

import "fmt"

// flat is used for surfaces without a shape.
var flat = &Conic{}

// Surface ties a shape and an aperture to a frame. The frame is shared, not copied:
// a surface moves only when its LocalCoordinates are updated.
type Surface struct {
	LC       *LocalCoordinates
	Shape    Shape    // nil: plane z = 0
	Aperture Aperture // nil: unlimited
}

type SurfaceOption func(*Surface)

func WithShape(s Shape) SurfaceOption       { return func(x *Surface) { x.Shape = s } }
func WithAperture(a Aperture) SurfaceOption { return func(x *Surface) { x.Aperture = a } }

func NewSurface(lc *LocalCoordinates, opts ...SurfaceOption) (*Surface, error) {
	if lc == nil {
		return nil, fmt.Errorf("surface needs a coordinate system: %w", ErrInvalidConfig)
	}
	s := &Surface{LC: lc}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// HasShape reports whether the surface has a physical form (a stop without one is a marker).
func (s *Surface) HasShape() bool { return s.Shape != nil }

func (s *Surface) shape() Shape {
	if s.Shape == nil {
		return flat
	}
	return s.Shape
}

// Intersect takes a bundle already expressed in this surface's frame. Rays that miss the
// shape are RayMissed; hits outside the aperture are RayClipped. Rays that arrive invalid
// keep their status and never reach the aperture test.
func (s *Surface) Intersect(local *RayBundle) Intersection {
	h := s.shape().Intersect(local.X, local.Directions(), local.Status)
	if s.Aperture == nil {
		return h
	}
	inside := s.Aperture.PointsInAperture(h.Points.X, h.Points.Y)
	for i, ok := range inside {
		if h.Status[i] == RayAlive && !ok {
			h.Status[i] = RayClipped
		}
	}
	return h
}

// Normal delegates to the shape, in local coordinates.
func (s *Surface) Normal(points Vec3s) Vec3s { return s.shape().Normal(points) }
