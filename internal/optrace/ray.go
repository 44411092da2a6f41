package optrace

import (
	"fmt"
	"math"
)

// RayBundle is a batch of rays sharing one wavelength, stored column-wise.
// K is the wavevector (direction times n·2π/λ) and E the electric field.
// Bundles are never modified after construction; every trace step builds a new one.
type RayBundle struct {
	X          Vec3s
	K          CVec3s
	E          CVec3s
	Status     []RayStatus
	Wavelength Real
}

// NewRayBundle validates shapes and marks rays with non-finite input as RayNaN.
func NewRayBundle(x Vec3s, k, e CVec3s, wavelength Real) (*RayBundle, error) {
	if !(wavelength > 0) || !isFinite(wavelength) {
		return nil, fmt.Errorf("wavelength must be > 0, got %.6g: %w", wavelength, ErrInvalidConfig)
	}
	n := x.Len()
	if !x.consistent() || !k.consistent() || !e.consistent() || k.Len() != n || e.Len() != n {
		return nil, fmt.Errorf("ray bundle columns disagree (x=%d k=%d e=%d): %w", n, k.Len(), e.Len(), ErrInvalidConfig)
	}
	b := &RayBundle{
		X:          x.Clone(),
		K:          k.Clone(),
		E:          e.Clone(),
		Status:     make([]RayStatus, n),
		Wavelength: wavelength,
	}
	for i := 0; i < n; i++ {
		if !b.X.At(i).finite() || !b.K.At(i).finite() || !b.E.At(i).finite() || b.K.At(i).Real().Len() == 0 {
			b.Status[i] = RayNaN
		}
	}
	return b, nil
}

// N returns the number of rays.
func (b *RayBundle) N() int { return b.X.Len() }

func (b *RayBundle) Valid(i int) bool { return b.Status[i] == RayAlive }

// ValidMask is the per-ray validity vector.
func (b *RayBundle) ValidMask() []bool {
	out := make([]bool, len(b.Status))
	for i, s := range b.Status {
		out[i] = s == RayAlive
	}
	return out
}

func (b *RayBundle) ValidCount() int {
	n := 0
	for _, s := range b.Status {
		if s == RayAlive {
			n++
		}
	}
	return n
}

// Wavenumber is the vacuum wavenumber 2π/λ.
func (b *RayBundle) Wavenumber() Real { return 2 * math.Pi / b.Wavelength }

// Directions returns unit vectors along Re(K).
func (b *RayBundle) Directions() Vec3s {
	return directions(b.K)
}

func directions(k CVec3s) Vec3s {
	out := NewVec3s(k.Len())
	for i := range out.X {
		out.Set(i, k.At(i).Real().Norm())
	}
	return out
}

// Stats counts ray fates in this bundle.
func (b *RayBundle) Stats() PathStats { return countStatuses(b.Status) }
