package optrace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func almostEq(a, b, tol Real) bool { return math.Abs(a-b) <= tol }

func vecNear(t *testing.T, want, got Vector3, tol Real) {
	t.Helper()
	if got.Sub(want).Len() > tol {
		t.Fatalf("vector mismatch: got %+v want %+v (tol %.3g)", got, want, tol)
	}
}

// parallelBundle launches rays from points along d in a medium of index n.
func parallelBundle(t *testing.T, pts []Vector3, d Vector3, n Real, wavelength Real) *RayBundle {
	t.Helper()
	x := NewVec3s(len(pts))
	k := NewCVec3s(len(pts))
	e := NewCVec3s(len(pts))
	k0 := 2 * math.Pi / wavelength
	d = d.Norm()
	pol := d.Cross(Vector3{X: 1})
	if pol.Len() < 1e-9 {
		pol = d.Cross(Vector3{Y: 1})
	}
	for i, p := range pts {
		x.Set(i, p)
		k.Set(i, d.Mul(n*k0).complex())
		e.Set(i, pol.Norm().complex())
	}
	b, err := NewRayBundle(x, k, e, wavelength)
	require.NoError(t, err)
	return b
}

const waterPage = `
REFERENCES: "Hale and Querry 1973, truncated"
DATA:
  - type: tabulated n
    data: |
        0.400 1.339
        0.450 1.337
        0.500 1.335
        0.550 1.333
        0.600 1.332
        0.650 1.331
        0.700 1.331
        0.750 1.330
`

func waterMaterial(t *testing.T) *CatalogMaterial {
	t.Helper()
	m, err := ParseCatalogPage("water", []byte(waterPage))
	require.NoError(t, err)
	return m
}

// dropletSystem is a water sphere of radius 0.1 centred at z = 0.2: refraction in,
// one reflection at the back, refraction out, back onto the stop plane.
func dropletSystem(t *testing.T, water Material, opts ...SystemOption) (*OpticalSystem, Sequence) {
	t.Helper()
	const r = 0.1
	s := NewOpticalSystem(opts...)
	add := func(name string, z Real, parent string) *LocalCoordinates {
		lc, err := s.AddLocalCoordinateSystem(FrameSpec{Name: name, Decenter: Vector3{Z: z}}, parent)
		require.NoError(t, err)
		return lc
	}
	lc0 := add("stop", 0, s.Root().Name())
	add("dropletcenter", 2*r, "stop")
	lc1 := add("surf1", -r, "dropletcenter")
	lc2 := add("surf2", r, "dropletcenter")
	lc4 := add("image", -2*r, "dropletcenter")

	circ := func(rad Real) Aperture {
		a, err := NewCircularAperture(rad)
		require.NoError(t, err)
		return a
	}
	sphere := func(c Real) Shape {
		a, err := NewAsphere(c, 0)
		require.NoError(t, err)
		return a
	}
	surface := func(lc *LocalCoordinates, opts ...SurfaceOption) *Surface {
		sf, err := NewSurface(lc, opts...)
		require.NoError(t, err)
		return sf
	}
	stop := surface(lc0, WithAperture(circ(7*r)))
	front := surface(lc1, WithShape(sphere(1/r)), WithAperture(circ(r)))
	rear := surface(lc2, WithShape(sphere(-1/r)), WithAperture(circ(r)))
	image := surface(lc4, WithAperture(circ(7*r)))

	e, err := NewOpticalElement(lc0, "droplet")
	require.NoError(t, err)
	require.NoError(t, e.AddMaterial("water", water))
	require.NoError(t, e.AddSurface("stop", stop, MaterialPair{}))
	require.NoError(t, e.AddSurface("surf1", front, MaterialPair{After: "water"}))
	require.NoError(t, e.AddSurface("surf2", rear, MaterialPair{Before: "water", After: "water"}))
	require.NoError(t, e.AddSurface("surf4", front, MaterialPair{Before: "water"}))
	require.NoError(t, e.AddSurface("image", image, MaterialPair{}))
	require.NoError(t, s.AddElement(e))

	seq := Sequence{{
		Element: "droplet",
		Steps: []SurfaceStep{
			{Surface: "stop", Options: StepOptions{IsStop: true}},
			{Surface: "surf1"},
			{Surface: "surf2", Options: StepOptions{IsMirror: true}},
			{Surface: "surf4"},
			{Surface: "image"},
		},
	}}
	return s, seq
}

func dropletBundle(t *testing.T, wavelength Real) *RayBundle {
	t.Helper()
	b, err := CollimatedBundle(11, BundleSpec{
		Radius: 0.005,
		Start:  Vector3{Y: 0.09},
		AngleX: -12 * Degree,
		Raster: MeridionalFan{},
	}, wavelength)
	require.NoError(t, err)
	return b
}
