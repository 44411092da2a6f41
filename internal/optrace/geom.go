package optrace

import (
	"math"
	"math/cmplx"
)

// reflect3 mirrors a wavevector about the unit normal N.
func reflect3(k CVector3, N Vector3) CVector3 {
	return k.Sub(N.complex().Mul(2 * k.DotReal(N)))
}

// reflectField flips the normal-aligned component of the field.
func reflectField(e CVector3, N Vector3) CVector3 {
	return e.Sub(N.complex().Mul(2 * e.DotReal(N)))
}

// Refraction in wavevector form.
// The tangential part of k is kept; the normal part is solved from k·k = (n2 k0)²
// and keeps the sign it had, so N may point either way.
// Returns false on total internal reflection.
func refract3(k CVector3, N Vector3, k0 Real, n2 complex128) (CVector3, bool) {
	kn := k.DotReal(N)
	kt := k.Sub(N.complex().Mul(kn))
	nk := n2 * complex(k0, 0)
	disc := nk*nk - kt.Dot(kt)
	if real(disc) < 0 && math.Abs(imag(disc)) <= degenerateEps*cmplx.Abs(disc) {
		return CVector3{}, false // total internal reflection
	}
	kp := cmplx.Sqrt(disc)
	if real(kn) < 0 {
		kp = -kp
	}
	return kt.Add(N.complex().Mul(kp)), true
}

// transferField carries E across a refraction without changing its power:
// the s component (normal to the plane of incidence) is kept, the p component
// turns with the direction. At normal incidence nothing changes.
func transferField(e CVector3, dIn, dOut, N Vector3) CVector3 {
	s := dIn.Cross(N)
	if s.Len() < degenerateEps {
		return e
	}
	s = s.Norm()
	pIn := s.Cross(dIn)
	pOut := s.Cross(dOut)
	es := e.DotReal(s)
	ep := e.DotReal(pIn)
	el := e.DotReal(dIn)
	return s.complex().Mul(es).Add(pOut.complex().Mul(ep)).Add(dOut.complex().Mul(el))
}

// isotropicLaw is the refraction/reflection law shared by all isotropic materials.
func isotropicLaw(in RefractInput) RefractOutput {
	n := in.K.Len()
	out := RefractOutput{K: in.K.Clone(), E: in.E.Clone(), Status: make([]RayStatus, n)}
	copy(out.Status, in.Status)
	k0 := 2 * math.Pi / in.Wavelength
	for i := 0; i < n; i++ {
		if out.Status[i] != RayAlive {
			continue
		}
		N := in.Normal.At(i)
		k, e := in.K.At(i), in.E.At(i)
		if in.Mirror {
			k2, e2 := reflect3(k, N), reflectField(e, N)
			if !k2.finite() || !e2.finite() {
				out.Status[i] = RayNaN
				continue
			}
			out.K.Set(i, k2)
			out.E.Set(i, e2)
			continue
		}
		k2, ok := refract3(k, N, k0, in.IndexAfter)
		if !ok {
			out.Status[i] = RayTIR
			continue
		}
		e2 := transferField(e, k.Real().Norm(), k2.Real().Norm(), N)
		if !k2.finite() || !e2.finite() {
			out.Status[i] = RayNaN
			continue
		}
		out.K.Set(i, k2)
		out.E.Set(i, e2)
	}
	return out
}
