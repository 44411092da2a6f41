package optrace

import "math"

// Tilt angles in radians about the x, y and z axes.
type Rot3 struct {
	X, Y, Z Real
}

func rotX(a Real) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	M := I3()
	M.M[1][1], M.M[1][2] = c, -s
	M.M[2][1], M.M[2][2] = s, c
	return M
}
func rotY(a Real) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	M := I3()
	M.M[0][0], M.M[0][2] = c, s
	M.M[2][0], M.M[2][2] = -s, c
	return M
}
func rotZ(a Real) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	M := I3()
	M.M[0][0], M.M[0][1] = c, -s
	M.M[1][0], M.M[1][1] = s, c
	return M
}

// Compose rotation from tilts: about x first, then y, then z.
// The columns of the result are the tilted basis vectors in parent coordinates.
func rotFromTilts(r Rot3) Mat3 {
	R := I3()
	R = rotX(r.X).Mul(R)
	R = rotY(r.Y).Mul(R)
	R = rotZ(r.Z).Mul(R)
	return R
}
