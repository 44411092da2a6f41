package optrace

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incident(angle, n, k0 Real) CVector3 {
	return Vector3{0, math.Sin(angle), math.Cos(angle)}.Mul(n * k0).complex()
}

func TestRefract3_SnellAndWavenumber(t *testing.T) {
	k0 := 2 * math.Pi / StandardWavelength
	N := Vector3{Z: 1}
	for _, deg := range []Real{0, 10, 30, 60, 89} {
		a := deg * Degree
		kin := incident(a, 1, k0)
		kout, ok := refract3(kin, N, k0, 1.5)
		require.True(t, ok, "angle %v", deg)
		din := kin.Real().Norm()
		dout := kout.Real().Norm()
		// sin θ1 = 1.5 sin θ2
		assert.InDelta(t, din.Y, 1.5*dout.Y, 1e-12)
		// |k|/n is conserved
		assert.InDelta(t, math.Sqrt(kin.Norm2())/1, math.Sqrt(kout.Norm2())/1.5, 1e-6*k0)
		assert.Greater(t, dout.Z, 0.0, "keeps travelling forward")
	}
}

func TestRefract3_NormalOrientationIrrelevant(t *testing.T) {
	k0 := 2 * math.Pi / StandardWavelength
	kin := incident(25*Degree, 1, k0)
	a, ok := refract3(kin, Vector3{Z: 1}, k0, 1.7)
	require.True(t, ok)
	b, ok := refract3(kin, Vector3{Z: -1}, k0, 1.7)
	require.True(t, ok)
	assert.InDelta(t, 0, a.Sub(b).Real().Len(), 1e-9)
}

func TestRefract3_TotalInternalReflection(t *testing.T) {
	k0 := 2 * math.Pi / StandardWavelength
	// critical angle from 1.5 to 1 is ~41.8°
	_, ok := refract3(incident(60*Degree, 1.5, k0), Vector3{Z: 1}, k0, 1)
	assert.False(t, ok)
	_, ok = refract3(incident(40*Degree, 1.5, k0), Vector3{Z: 1}, k0, 1)
	assert.True(t, ok)
}

func TestRefract3_AbsorbingMedium(t *testing.T) {
	k0 := 2 * math.Pi / StandardWavelength
	n2 := complex(1.5, 0.01)
	kout, ok := refract3(incident(20*Degree, 1, k0), Vector3{Z: 1}, k0, n2)
	require.True(t, ok)
	// dispersion relation k·k = (n k0)² holds with a complex index
	want := n2 * n2 * complex(k0*k0, 0)
	assert.InDelta(t, 0, cmplx.Abs(kout.Dot(kout)-want)/cmplx.Abs(want), 1e-12)
	assert.Greater(t, imag(kout.Z), 0.0, "decays along the propagation")
}

func TestReflect3_Properties(t *testing.T) {
	N := Vector3{1, 2, 3}.Norm()
	k := CVector3{0.3, -0.2, 0.9}
	r := reflect3(k, N)
	assert.InDelta(t, 0, cmplx.Abs(r.DotReal(N)+k.DotReal(N)), 1e-15)
	assert.InDelta(t, k.Norm2(), r.Norm2(), 1e-15)

	e := CVector3{1i, 1, 0}
	re := reflectField(e, N)
	assert.InDelta(t, e.Norm2(), re.Norm2(), 1e-15)
}

func TestTransferField_ConservesPowerAndTransversality(t *testing.T) {
	k0 := 2 * math.Pi / StandardWavelength
	N := Vector3{Z: 1}
	kin := incident(35*Degree, 1, k0)
	kout, ok := refract3(kin, N, k0, 1.5)
	require.True(t, ok)
	din, dout := kin.Real().Norm(), kout.Real().Norm()

	c, sn := math.Cos(35*Degree), math.Sin(35*Degree)
	sPol := CVector3{X: 1}
	pPol := Vector3{0, c, -sn}.complex()
	mixed := sPol.Mul(0.6).Add(pPol.Mul(0.8i))
	for _, e := range []CVector3{sPol, pPol, mixed} {
		out := transferField(e, din, dout, N)
		assert.InDelta(t, e.Norm2(), out.Norm2(), 1e-12)
		assert.InDelta(t, 0, cmplx.Abs(out.DotReal(dout)), 1e-12)
	}

	// normal incidence: unchanged
	e := CVector3{X: 1, Y: 1i}
	assert.Equal(t, e, transferField(e, N, N, N))
}

func TestIsotropicLaw_TIRversusMirror(t *testing.T) {
	k0 := 2 * math.Pi / StandardWavelength
	K, E, Nrm := NewCVec3s(1), NewCVec3s(1), NewVec3s(1)
	K.Set(0, incident(60*Degree, 1.5, k0))
	E.Set(0, CVector3{X: 1})
	Nrm.Set(0, Vector3{Z: 1})
	in := RefractInput{
		K: K, E: E, Normal: Nrm,
		Status:      []RayStatus{RayAlive},
		Wavelength:  StandardWavelength,
		IndexBefore: 1.5,
		IndexAfter:  1,
	}
	out := isotropicLaw(in)
	assert.Equal(t, RayTIR, out.Status[0])
	assert.Equal(t, RayAlive, in.Status[0], "input untouched")

	in.Mirror = true
	in.IndexAfter = in.IndexBefore
	out = isotropicLaw(in)
	require.Equal(t, RayAlive, out.Status[0])
	d := out.K.At(0).Real().Norm()
	assert.Less(t, d.Z, 0.0, "reflected back")
	assert.InDelta(t, math.Sqrt(K.At(0).Norm2()), math.Sqrt(out.K.At(0).Norm2()), 1e-9)
}
