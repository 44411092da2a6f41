package optrace

import (
	"math"
	"math/cmplx"
)

func isFinite(x Real) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func isFiniteC(c complex128) bool { return !cmplx.IsInf(c) && !cmplx.IsNaN(c) }

func linspace(a, b Real, n int) []Real {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []Real{(a + b) / 2}
	}
	out := make([]Real, n)
	step := (b - a) / Real(n-1)
	for i := range out {
		out[i] = a + Real(i)*step
	}
	return out
}
