package optrace

import (
	"fmt"
	"math"
	"math/rand"
)

// Raster samples the unit disc of a pupil or field. n is the raster density,
// not necessarily the number of points returned.
type Raster interface {
	Points(n int) (x, y []Real)
	isRaster()
}

// RectGrid is an n×n grid over [-1, 1]², cut to the unit disc.
type RectGrid struct{}

func (RectGrid) Points(n int) (x, y []Real) {
	if n < 1 {
		return nil, nil
	}
	if n == 1 {
		return []Real{0}, []Real{0}
	}
	ts := linspace(-1, 1, n)
	for _, yy := range ts {
		for _, xx := range ts {
			if xx*xx+yy*yy <= 1+degenerateEps {
				x = append(x, xx)
				y = append(y, yy)
			}
		}
	}
	return x, y
}

// HexGrid packs rows of n points across the diameter with alternate rows shifted.
type HexGrid struct{}

func (HexGrid) Points(n int) (x, y []Real) {
	if n < 1 {
		return nil, nil
	}
	if n == 1 {
		return []Real{0}, []Real{0}
	}
	dx := 2 / Real(n-1)
	dy := dx * math.Sqrt(3) / 2
	rows := int(math.Floor(1/dy + degenerateEps))
	for r := -rows; r <= rows; r++ {
		yy := Real(r) * dy
		shift := 0.0
		if r%2 != 0 {
			shift = dx / 2
		}
		for c := -n; c <= n; c++ {
			xx := Real(c)*dx + shift
			if xx*xx+yy*yy <= 1+degenerateEps {
				x = append(x, xx)
				y = append(y, yy)
			}
		}
	}
	return x, y
}

// MeridionalFan is n points along y in [-1, 1].
type MeridionalFan struct{}

func (MeridionalFan) Points(n int) (x, y []Real) {
	if n < 1 {
		return nil, nil
	}
	if n == 1 {
		return []Real{0}, []Real{0}
	}
	return make([]Real, n), linspace(-1, 1, n)
}

// SagittalFan is n points along x in [-1, 1].
type SagittalFan struct{}

func (SagittalFan) Points(n int) (x, y []Real) {
	if n < 1 {
		return nil, nil
	}
	if n == 1 {
		return []Real{0}, []Real{0}
	}
	return linspace(-1, 1, n), make([]Real, n)
}

// RandomGrid draws n uniform points on the disc; a fixed Seed repeats the draw.
type RandomGrid struct {
	Seed int64
}

func (g RandomGrid) Points(n int) (x, y []Real) {
	if n < 1 {
		return nil, nil
	}
	rng := rand.New(rand.NewSource(g.Seed))
	x, y = make([]Real, n), make([]Real, n)
	for i := 0; i < n; i++ {
		r := math.Sqrt(rng.Float64())
		phi := 2 * math.Pi * rng.Float64()
		x[i], y[i] = r*math.Cos(phi), r*math.Sin(phi)
	}
	return x, y
}

func (RectGrid) isRaster()      {}
func (HexGrid) isRaster()       {}
func (MeridionalFan) isRaster() {}
func (SagittalFan) isRaster()   {}
func (RandomGrid) isRaster()    {}

// BundleSpec describes a collimated input beam in global coordinates.
type BundleSpec struct {
	Radius Real
	Start  Vector3 // centre of the beam footprint
	AngleX Real    // tilt in the y-z plane, radians; negative tilts towards -y
	AngleY Real    // tilt in the x-z plane, radians
	Raster Raster  // nil: MeridionalFan
	Medium Material
}

// CollimatedBundle samples spec.Raster at density n and launches parallel rays
// with linear polarisation perpendicular to x where possible.
func CollimatedBundle(n int, spec BundleSpec, wavelength Real) (*RayBundle, error) {
	if !(spec.Radius >= 0) || !isFinite(spec.Radius) || !spec.Start.finite() {
		return nil, fmt.Errorf("bundle radius %.6g / start %v: %w", spec.Radius, spec.Start, ErrInvalidConfig)
	}
	r := spec.Raster
	if r == nil {
		r = MeridionalFan{}
	}
	px, py := r.Points(n)
	if len(px) == 0 {
		return nil, fmt.Errorf("raster produced no points for n=%d: %w", n, ErrInvalidConfig)
	}
	idx, err := indexOf(spec.Medium, nil, wavelength)
	if err != nil {
		return nil, err
	}
	ca := math.Cos(spec.AngleX)
	d := Vector3{ca * math.Sin(spec.AngleY), math.Sin(spec.AngleX), ca * math.Cos(spec.AngleY)}
	pol := d.Cross(Vector3{X: 1})
	if pol.Len() < degenerateEps {
		pol = d.Cross(Vector3{Y: 1})
	}
	pol = pol.Norm()
	kmag := idx * complex(2*math.Pi/wavelength, 0)

	m := len(px)
	x, k, e := NewVec3s(m), NewCVec3s(m), NewCVec3s(m)
	for i := 0; i < m; i++ {
		x.Set(i, spec.Start.Add(Vector3{px[i] * spec.Radius, py[i] * spec.Radius, 0}))
		k.Set(i, d.complex().Mul(kmag))
		e.Set(i, pol.complex())
	}
	return NewRayBundle(x, k, e, wavelength)
}
