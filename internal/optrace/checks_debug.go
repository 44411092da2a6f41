//go:build debug
// +build debug

package optrace

import (
	"log/slog"
	"math"
)

// checkStep verifies |k| = n·k0 for every alive ray after a law was applied
// in a lossless medium. Only built with -tags debug.
func checkStep(logger *slog.Logger, st *resolvedStep, k CVec3s, status []RayStatus, k0 Real) {
	n := st.nAfter
	if st.opts.IsMirror {
		n = st.nBefore
	}
	if imag(n) != 0 {
		return
	}
	want := real(n) * k0
	for i, s := range status {
		if s != RayAlive {
			continue
		}
		got := math.Sqrt(k.At(i).Norm2())
		if math.Abs(got-want) > 1e-9*want {
			logger.Warn("[DEBUG] wavenumber drift",
				"element", st.element,
				"surface", st.surface,
				"ray", i,
				"got", got,
				"want", want,
			)
		}
	}
}
