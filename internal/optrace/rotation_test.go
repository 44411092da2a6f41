package optrace

import (
	"math"
	"testing"
)

func TestRotFromTilts_IsOrthonormal(t *testing.T) {
	R := rotFromTilts(Rot3{X: math.Pi / 6, Y: math.Pi / 7, Z: math.Pi / 5})

	P := R.Transpose().Mul(R)
	I := I3()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if diff := math.Abs(P.M[r][c] - I.M[r][c]); diff > 1e-12 {
				t.Fatalf("R^T R != I at (%d,%d): %.3g", r, c, diff)
			}
		}
	}
}

func TestAxisRotations(t *testing.T) {
	cases := []struct {
		name string
		R    Mat3
		in   Vector3
		want Vector3
	}{
		{"x", rotX(math.Pi / 2), Vector3{Y: 1}, Vector3{Z: 1}},
		{"y", rotY(math.Pi / 2), Vector3{Z: 1}, Vector3{X: 1}},
		{"z", rotZ(math.Pi / 2), Vector3{X: 1}, Vector3{Y: 1}},
	}
	for _, c := range cases {
		o := c.R.MulVec(c.in)
		if o.Sub(c.want).Len() > 1e-12 {
			t.Fatalf("rot%s: got %+v want %+v", c.name, o, c.want)
		}
	}
}

func TestRotFromTilts_Order(t *testing.T) {
	r := Rot3{X: 0.3, Y: -0.2, Z: 0.7}
	want := rotZ(r.Z).Mul(rotY(r.Y)).Mul(rotX(r.X))
	got := rotFromTilts(r)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(got.M[i][j]-want.M[i][j]) > 1e-15 {
				t.Fatalf("tilt order mismatch at (%d,%d)", i, j)
			}
		}
	}
}

func TestMulVecs(t *testing.T) {
	v := NewVec3s(2)
	v.Set(0, Vector3{1, 0, 0})
	v.Set(1, Vector3{0, 2, 0})
	out := rotZ(math.Pi/2).MulVecs(v, Vector3{Z: 5})
	if out.At(0).Sub(Vector3{0, 1, 5}).Len() > 1e-12 || out.At(1).Sub(Vector3{-2, 0, 5}).Len() > 1e-12 {
		t.Fatalf("MulVecs mismatch: %+v %+v", out.At(0), out.At(1))
	}
	if v.At(0) != (Vector3{1, 0, 0}) {
		t.Fatalf("MulVecs modified its input")
	}
}
