package optrace

// 3×3 matrix (row-major)
type Mat3 struct {
	M [3][3]Real
}

func I3() Mat3 {
	return Mat3{M: [3][3]Real{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}}
}

func (A Mat3) Mul(B Mat3) Mat3 {
	var R Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += A.M[r][k] * B.M[k][c]
			}
			R.M[r][c] = sum
		}
	}
	return R
}

func (A Mat3) Transpose() Mat3 {
	var R Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			R.M[r][c] = A.M[c][r]
		}
	}
	return R
}

func (A Mat3) MulVec(v Vector3) Vector3 {
	return Vector3{
		A.M[0][0]*v.X + A.M[0][1]*v.Y + A.M[0][2]*v.Z,
		A.M[1][0]*v.X + A.M[1][1]*v.Y + A.M[1][2]*v.Z,
		A.M[2][0]*v.X + A.M[2][1]*v.Y + A.M[2][2]*v.Z,
	}
}

func (A Mat3) MulCVec(v CVector3) CVector3 {
	c := func(x Real) complex128 { return complex(x, 0) }
	return CVector3{
		c(A.M[0][0])*v.X + c(A.M[0][1])*v.Y + c(A.M[0][2])*v.Z,
		c(A.M[1][0])*v.X + c(A.M[1][1])*v.Y + c(A.M[1][2])*v.Z,
		c(A.M[2][0])*v.X + c(A.M[2][1])*v.Y + c(A.M[2][2])*v.Z,
	}
}

// MulVecs applies A to every column of the batch and adds t.
func (A Mat3) MulVecs(v Vec3s, t Vector3) Vec3s {
	out := NewVec3s(v.Len())
	for i := range out.X {
		x, y, z := v.X[i], v.Y[i], v.Z[i]
		out.X[i] = A.M[0][0]*x + A.M[0][1]*y + A.M[0][2]*z + t.X
		out.Y[i] = A.M[1][0]*x + A.M[1][1]*y + A.M[1][2]*z + t.Y
		out.Z[i] = A.M[2][0]*x + A.M[2][1]*y + A.M[2][2]*z + t.Z
	}
	return out
}

// MulCVecs applies A to every column of a complex batch.
func (A Mat3) MulCVecs(v CVec3s) CVec3s {
	out := NewCVec3s(v.Len())
	for i := range out.X {
		out.Set(i, A.MulCVec(v.At(i)))
	}
	return out
}

// ABCD is a paraxial ray transfer matrix acting on (y, dy/dz).
type ABCD struct {
	M [2][2]Real
}

func I2() ABCD {
	return ABCD{M: [2][2]Real{
		{1, 0},
		{0, 1},
	}}
}

func (A ABCD) Mul(B ABCD) ABCD {
	var R ABCD
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			R.M[r][c] = A.M[r][0]*B.M[0][c] + A.M[r][1]*B.M[1][c]
		}
	}
	return R
}

func (A ABCD) Det() Real { return A.M[0][0]*A.M[1][1] - A.M[0][1]*A.M[1][0] }
