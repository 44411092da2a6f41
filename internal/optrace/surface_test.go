package optrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApertures(t *testing.T) {
	c, err := NewCircularAperture(1)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, c.PointsInAperture([]Real{0, 0.6, 0.8}, []Real{0, 0.7, 0.8}))

	r, err := NewRectangularAperture(2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false}, r.PointsInAperture([]Real{1.9, 2.1, -2, 0}, []Real{0.5, 0, -0.5, -0.6}))

	_, err = NewCircularAperture(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewRectangularAperture(1, -1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSurface_ClipsOnlyRaysThatHit(t *testing.T) {
	g := NewCoordinateGraph("")
	lc, err := g.add(FrameSpec{Name: "s", Decenter: Vector3{Z: 5}}, "")
	require.NoError(t, err)
	ap, err := NewCircularAperture(1)
	require.NoError(t, err)
	sh, err := NewConic(0.1, 0)
	require.NoError(t, err)
	s, err := NewSurface(lc, WithShape(sh), WithAperture(ap))
	require.NoError(t, err)
	assert.True(t, s.HasShape())

	b := parallelBundle(t, []Vector3{{Y: 0.5}, {Y: 2}, {Y: 20}}, Vector3{Z: 1}, 1, StandardWavelength)
	local := &RayBundle{
		X:          lc.GlobalToLocalPoints(b.X),
		K:          lc.GlobalToLocalCVectors(b.K),
		E:          lc.GlobalToLocalCVectors(b.E),
		Status:     b.Status,
		Wavelength: b.Wavelength,
	}
	h := s.Intersect(local)
	// y = 20 misses the R = 10 sphere entirely and is never aperture-tested
	assert.Equal(t, []RayStatus{RayAlive, RayClipped, RayMissed}, h.Status)
	assert.InDelta(t, sh.Sag(0, 0.5), h.Points.At(0).Z, 1e-12)
}

func TestSurface_WithoutShapeIsVertexPlane(t *testing.T) {
	g := NewCoordinateGraph("")
	s, err := NewSurface(g.Root())
	require.NoError(t, err)
	assert.False(t, s.HasShape())

	b := parallelBundle(t, []Vector3{{X: 1, Y: 2, Z: -4}}, Vector3{Z: 1}, 1, StandardWavelength)
	h := s.Intersect(b)
	require.Equal(t, RayAlive, h.Status[0])
	vecNear(t, Vector3{X: 1, Y: 2}, h.Points.At(0), 1e-12)
	vecNear(t, Vector3{Z: 1}, s.Normal(h.Points).At(0), 0)

	_, err = NewSurface(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
