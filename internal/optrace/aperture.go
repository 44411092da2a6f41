package optrace

import "fmt"

// Aperture tests hit points in the surface's local xy plane.
// A nil Aperture on a Surface means unlimited.
type Aperture interface {
	PointsInAperture(x, y []Real) []bool
	isAperture()
}

type CircularAperture struct {
	Radius Real
}

func NewCircularAperture(radius Real) (*CircularAperture, error) {
	if !(radius > 0) || !isFinite(radius) {
		return nil, fmt.Errorf("circular aperture radius must be > 0, got %.6g: %w", radius, ErrInvalidConfig)
	}
	return &CircularAperture{Radius: radius}, nil
}

func (a *CircularAperture) PointsInAperture(x, y []Real) []bool {
	r2 := a.Radius * a.Radius
	out := make([]bool, len(x))
	for i := range x {
		out[i] = x[i]*x[i]+y[i]*y[i] <= r2
	}
	return out
}

func (*CircularAperture) isAperture() {}

// RectangularAperture is centred on the local origin.
type RectangularAperture struct {
	HalfWidthX, HalfWidthY Real
}

func NewRectangularAperture(hx, hy Real) (*RectangularAperture, error) {
	if !(hx > 0 && hy > 0) || !isFinite(hx) || !isFinite(hy) {
		return nil, fmt.Errorf("rectangular aperture half widths must be > 0, got %.6g x %.6g: %w", hx, hy, ErrInvalidConfig)
	}
	return &RectangularAperture{HalfWidthX: hx, HalfWidthY: hy}, nil
}

func (a *RectangularAperture) PointsInAperture(x, y []Real) []bool {
	out := make([]bool, len(x))
	for i := range x {
		out[i] = x[i] >= -a.HalfWidthX && x[i] <= a.HalfWidthX && y[i] >= -a.HalfWidthY && y[i] <= a.HalfWidthY
	}
	return out
}

func (*RectangularAperture) isAperture() {}
