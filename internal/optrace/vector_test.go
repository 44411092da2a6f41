package optrace

import (
	"math"
	"testing"
)

func TestVectorOps(t *testing.T) {
	v := Vector3{1, 2, 3}
	w := Vector3{-1, 0.5, 2}

	if add := v.Add(w); add != (Vector3{0, 2.5, 5}) {
		t.Fatalf("Add mismatch: %+v", add)
	}
	if sub := v.Sub(w); sub != (Vector3{2, 1.5, 1}) {
		t.Fatalf("Sub mismatch: %+v", sub)
	}
	if mul := v.Mul(3); mul != (Vector3{3, 6, 9}) {
		t.Fatalf("Mul mismatch: %+v", mul)
	}
	if dot := v.Dot(w); dot != Real(-1+1+6) {
		t.Fatalf("Dot mismatch: %.12g", dot)
	}
	c := v.Cross(w)
	if math.Abs(c.Dot(v)) > 1e-12 || math.Abs(c.Dot(w)) > 1e-12 {
		t.Fatalf("Cross not orthogonal: %+v", c)
	}
	if x := (Vector3{X: 1}).Cross(Vector3{Y: 1}); x != (Vector3{Z: 1}) {
		t.Fatalf("x × y != z: %+v", x)
	}
	if math.Abs(v.Len()-math.Sqrt(14)) > 1e-12 {
		t.Fatalf("Len mismatch: %.12g", v.Len())
	}
	if n := v.Norm(); math.Abs(n.Len()-1) > 1e-12 {
		t.Fatalf("Norm not unit: %.12g", n.Len())
	}
	if z := (Vector3{}).Norm(); z != (Vector3{}) {
		t.Fatalf("Norm of zero changed: %+v", z)
	}
}

func TestCVectorOps(t *testing.T) {
	a := CVector3{1 + 1i, 2, 0}
	b := CVector3{1, 1i, 3}

	// bilinear, not hermitian
	if d := a.Dot(b); d != complex(1, 3) {
		t.Fatalf("Dot mismatch: %v", d)
	}
	if d := a.DotReal(Vector3{1, 1, 1}); d != complex(3, 1) {
		t.Fatalf("DotReal mismatch: %v", d)
	}
	if n := a.Norm2(); math.Abs(n-6) > 1e-12 {
		t.Fatalf("Norm2 mismatch: %.12g", n)
	}
	if r := a.Real(); r != (Vector3{1, 2, 0}) {
		t.Fatalf("Real mismatch: %+v", r)
	}
	if !a.finite() || (CVector3{X: complex(math.NaN(), 0)}).finite() {
		t.Fatalf("finite check wrong")
	}
}

func TestLinspace(t *testing.T) {
	xs := linspace(-1, 1, 5)
	want := []Real{-1, -0.5, 0, 0.5, 1}
	for i := range want {
		if math.Abs(xs[i]-want[i]) > 1e-15 {
			t.Fatalf("linspace[%d] = %.17g want %.17g", i, xs[i], want[i])
		}
	}
	if got := linspace(2, 4, 1); len(got) != 1 || got[0] != 3 {
		t.Fatalf("single point linspace: %v", got)
	}
	if linspace(0, 1, 0) != nil {
		t.Fatalf("empty linspace should be nil")
	}
}
