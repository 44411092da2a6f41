package optrace

import (
	"math"
	"math/cmplx"
)

type Real = float64

// Vector3 is a point or a direction in 3D space.
type Vector3 struct {
	X, Y, Z Real
}

// Vector functions
func (a Vector3) Add(b Vector3) Vector3 { return Vector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vector3) Sub(b Vector3) Vector3 { return Vector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (v Vector3) Mul(s Real) Vector3    { return Vector3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product between two vectors.
func (a Vector3) Dot(b Vector3) Real {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns a × b.
func (a Vector3) Cross(b Vector3) Vector3 {
	return Vector3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the Euclidean length of the vector.
func (v Vector3) Len() Real { return math.Sqrt(v.Dot(v)) }

// Norm returns a unit-length version of the vector.
func (v Vector3) Norm() Vector3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vector3{v.X / l, v.Y / l, v.Z / l}
}

func (v Vector3) finite() bool { return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z) }

func (v Vector3) complex() CVector3 {
	return CVector3{complex(v.X, 0), complex(v.Y, 0), complex(v.Z, 0)}
}

// CVector3 carries complex wavevectors and electric fields.
type CVector3 struct {
	X, Y, Z complex128
}

func (a CVector3) Add(b CVector3) CVector3 { return CVector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a CVector3) Sub(b CVector3) CVector3 { return CVector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (v CVector3) Mul(s complex128) CVector3 {
	return CVector3{v.X * s, v.Y * s, v.Z * s}
}

// Dot is the bilinear (unconjugated) product, as used by the dispersion relation k·k = (n k0)².
func (a CVector3) Dot(b CVector3) complex128 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// DotReal projects onto a real direction.
func (a CVector3) DotReal(n Vector3) complex128 {
	return a.X*complex(n.X, 0) + a.Y*complex(n.Y, 0) + a.Z*complex(n.Z, 0)
}

// Real drops the imaginary parts.
func (v CVector3) Real() Vector3 { return Vector3{real(v.X), real(v.Y), real(v.Z)} }

// Norm2 is the hermitian squared length Σ|c|².
func (v CVector3) Norm2() Real {
	a, b, c := cmplx.Abs(v.X), cmplx.Abs(v.Y), cmplx.Abs(v.Z)
	return a*a + b*b + c*c
}

func (v CVector3) finite() bool {
	return isFiniteC(v.X) && isFiniteC(v.Y) && isFiniteC(v.Z)
}
