package optrace

import (
	"fmt"
	"math"
)

// Asphere is a conic plus an even polynomial: Coefficients[i] multiplies r^(2i+4).
type Asphere struct {
	Conic
	Coefficients []Real
}

func NewAsphere(curvature, conicConstant Real, coefficients ...Real) (*Asphere, error) {
	base, err := NewConic(curvature, conicConstant)
	if err != nil {
		return nil, err
	}
	for i, a := range coefficients {
		if !isFinite(a) {
			return nil, fmt.Errorf("asphere coefficient %d is not finite: %w", i, ErrInvalidConfig)
		}
	}
	cs := make([]Real, len(coefficients))
	copy(cs, coefficients)
	return &Asphere{Conic: *base, Coefficients: cs}, nil
}

func (*Asphere) isShape() {}

func (s *Asphere) Sag(x, y Real) Real {
	r2 := x*x + y*y
	z := s.Conic.Sag(x, y)
	p := r2 * r2
	for _, a := range s.Coefficients {
		z += a * p
		p *= r2
	}
	return z
}

// slope: conic part plus Σ a_i (2i+4) r^(2i+2).
func (s *Asphere) slope(r2 Real) Real {
	g := s.Conic.slope(r2)
	p := r2
	for i, a := range s.Coefficients {
		g += a * Real(2*i+4) * p
		p *= r2
	}
	return g
}

func (s *Asphere) Normal(points Vec3s) Vec3s {
	return normalsFromSlope(points, s.slope)
}

// Intersect starts from the base conic hit and refines it with Newton steps on
// f(t) = z(t) - sag(x(t), y(t)).
func (s *Asphere) Intersect(pos, dir Vec3s, status []RayStatus) Intersection {
	if len(s.Coefficients) == 0 {
		return s.Conic.Intersect(pos, dir, status)
	}
	h := newIntersection(pos, status)
	for i := range h.T {
		if h.Status[i] != RayAlive {
			continue
		}
		p, d := pos.At(i), dir.At(i)
		t, ok := s.Conic.intersectOne(p, d)
		if !ok {
			// the polynomial may still bend into the ray; start from the vertex plane
			if d.Z == 0 {
				h.Status[i] = RayMissed
				continue
			}
			t = -p.Z / d.Z
		}
		converged := false
		for it := 0; it < asphereIter; it++ {
			q := p.Add(d.Mul(t))
			f := q.Z - s.Sag(q.X, q.Y)
			df := d.Z - s.slope(q.X*q.X+q.Y*q.Y)*(q.X*d.X+q.Y*d.Y)
			if !isFinite(f) || !isFinite(df) || df == 0 {
				break
			}
			dt := f / df
			t -= dt
			if math.Abs(dt) <= asphereTol*(1+math.Abs(t)) {
				converged = true
				break
			}
		}
		if !converged {
			h.Status[i] = RayNaN
			continue
		}
		if t < -tTolerance {
			h.Status[i] = RayMissed
			continue
		}
		h.accept(i, t, p.Add(d.Mul(t)))
	}
	return h
}
