package optrace

// Vec3s is a columnar batch of 3-vectors: index i across X, Y and Z is one ray.
type Vec3s struct {
	X, Y, Z []Real
}

func NewVec3s(n int) Vec3s {
	return Vec3s{X: make([]Real, n), Y: make([]Real, n), Z: make([]Real, n)}
}

// Len returns the number of columns; all three slices must agree.
func (v Vec3s) Len() int { return len(v.X) }

func (v Vec3s) consistent() bool { return len(v.Y) == len(v.X) && len(v.Z) == len(v.X) }

func (v Vec3s) At(i int) Vector3 { return Vector3{v.X[i], v.Y[i], v.Z[i]} }

func (v Vec3s) Set(i int, p Vector3) {
	v.X[i], v.Y[i], v.Z[i] = p.X, p.Y, p.Z
}

func (v Vec3s) Clone() Vec3s {
	out := NewVec3s(v.Len())
	copy(out.X, v.X)
	copy(out.Y, v.Y)
	copy(out.Z, v.Z)
	return out
}

// CVec3s is the complex counterpart of Vec3s.
type CVec3s struct {
	X, Y, Z []complex128
}

func NewCVec3s(n int) CVec3s {
	return CVec3s{X: make([]complex128, n), Y: make([]complex128, n), Z: make([]complex128, n)}
}

func (v CVec3s) Len() int { return len(v.X) }

func (v CVec3s) consistent() bool { return len(v.Y) == len(v.X) && len(v.Z) == len(v.X) }

func (v CVec3s) At(i int) CVector3 { return CVector3{v.X[i], v.Y[i], v.Z[i]} }

func (v CVec3s) Set(i int, p CVector3) {
	v.X[i], v.Y[i], v.Z[i] = p.X, p.Y, p.Z
}

func (v CVec3s) Clone() CVec3s {
	out := NewCVec3s(v.Len())
	copy(out.X, v.X)
	copy(out.Y, v.Y)
	copy(out.Z, v.Z)
	return out
}

// RealVecs lifts a real batch to complex.
func RealVecs(v Vec3s) CVec3s {
	out := NewCVec3s(v.Len())
	for i := range v.X {
		out.Set(i, v.At(i).complex())
	}
	return out
}
