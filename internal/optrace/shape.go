package optrace

import (
	"fmt"
	"math"
)

// Shape is a surface form in its own local frame, vertex at the origin, axis along +z.
type Shape interface {
	// Intersect finds, per ray, the first hit at t ≥ 0 along dir (unit).
	// Rays whose status is not RayAlive are passed through untouched.
	Intersect(pos, dir Vec3s, status []RayStatus) Intersection
	// Normal is the unit normal at local surface points, +z at the vertex.
	Normal(points Vec3s) Vec3s
	// Sag is the surface height z(x, y); NaN outside the defined domain.
	Sag(x, y Real) Real
	isShape()
}

// Intersection holds per-ray hits in the surface's local frame.
type Intersection struct {
	T      []Real
	Points Vec3s
	Status []RayStatus
}

func newIntersection(pos Vec3s, status []RayStatus) Intersection {
	st := make([]RayStatus, len(status))
	copy(st, status)
	return Intersection{
		T:      make([]Real, pos.Len()),
		Points: pos.Clone(),
		Status: st,
	}
}

// accept stores a hit after the finiteness check; NaN never passes as valid.
func (h Intersection) accept(i int, t Real, p Vector3) {
	if !isFinite(t) || !p.finite() {
		h.Status[i] = RayNaN
		return
	}
	h.T[i] = t
	h.Points.Set(i, p)
}

// Conic: c(x²+y²) + c(1+k)z² - 2z = 0, a plane when the curvature is zero.
type Conic struct {
	Curvature     Real
	ConicConstant Real
}

func NewConic(curvature, conicConstant Real) (*Conic, error) {
	if !isFinite(curvature) || !isFinite(conicConstant) {
		return nil, fmt.Errorf("conic curvature %.6g / conic constant %.6g must be finite: %w", curvature, conicConstant, ErrInvalidConfig)
	}
	return &Conic{Curvature: curvature, ConicConstant: conicConstant}, nil
}

func (*Conic) isShape() {}

// onBranch reports whether z lies on the sheet through the vertex: 1 - c(1+k)z ≥ 0.
func (s *Conic) onBranch(z Real) bool {
	return 1-s.Curvature*(1+s.ConicConstant)*z >= -branchTol
}

// intersectOne solves the quadric for one ray and picks the nearest root at t ≥ 0
// that lies on the vertex branch.
func (s *Conic) intersectOne(p, d Vector3) (Real, bool) {
	c := s.Curvature
	k1 := 1 + s.ConicConstant
	A := c * (d.X*d.X + d.Y*d.Y + k1*d.Z*d.Z)
	B := 2 * (c*(p.X*d.X+p.Y*d.Y+k1*p.Z*d.Z) - d.Z)
	C := c*(p.X*p.X+p.Y*p.Y+k1*p.Z*p.Z) - 2*p.Z

	var roots [2]Real
	nr := 0
	if A == 0 {
		if B == 0 {
			return 0, false
		}
		roots[0] = -C / B
		nr = 1
	} else {
		disc := B*B - 4*A*C
		if disc < 0 || math.IsNaN(disc) {
			return 0, false
		}
		// numerically stable pair of roots
		q := -0.5 * (B + math.Copysign(math.Sqrt(disc), B))
		roots[0] = q / A
		nr = 1
		if q != 0 {
			roots[1] = C / q
			nr = 2
		}
	}

	best, ok := math.Inf(1), false
	for _, t := range roots[:nr] {
		if !isFinite(t) || t < -tTolerance || t >= best {
			continue
		}
		if !s.onBranch(p.Z + t*d.Z) {
			continue
		}
		best, ok = t, true
	}
	return best, ok
}

func (s *Conic) Intersect(pos, dir Vec3s, status []RayStatus) Intersection {
	h := newIntersection(pos, status)
	for i := range h.T {
		if h.Status[i] != RayAlive {
			continue
		}
		p, d := pos.At(i), dir.At(i)
		t, ok := s.intersectOne(p, d)
		if !ok {
			h.Status[i] = RayMissed
			continue
		}
		h.accept(i, t, p.Add(d.Mul(t)))
	}
	return h
}

// slope returns g with ∂z/∂x = x·g and ∂z/∂y = y·g, finite at the vertex.
func (s *Conic) slope(r2 Real) Real {
	c := s.Curvature
	return c / math.Sqrt(1-(1+s.ConicConstant)*c*c*r2)
}

func (s *Conic) Normal(points Vec3s) Vec3s {
	return normalsFromSlope(points, s.slope)
}

func (s *Conic) Sag(x, y Real) Real {
	c := s.Curvature
	r2 := x*x + y*y
	return c * r2 / (1 + math.Sqrt(1-(1+s.ConicConstant)*c*c*r2))
}

func normalsFromSlope(points Vec3s, slope func(r2 Real) Real) Vec3s {
	out := NewVec3s(points.Len())
	for i := range out.X {
		x, y := points.X[i], points.Y[i]
		g := slope(x*x + y*y)
		out.Set(i, Vector3{-x * g, -y * g, 1}.Norm())
	}
	return out
}
