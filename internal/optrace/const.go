package optrace

import "math"

// Lengths and wavelengths are in millimetres throughout.
const (
	Degree             = math.Pi / 180
	VacuumIndex        = 1.0
	StandardWavelength = 0.5875618e-3 // helium d-line
	DefaultRootName    = "global"
	DefaultRays        = 11
	SpotPNGSize        = 512
	SpotPNGMargin      = 0.1 // fraction of the image left empty around the spot
	// hot-loop constants reused across steps
	tTolerance    = 1e-9  // hits this far behind the ray origin still count
	branchTol     = 1e-9  // slack for the vertex-branch test of conics
	degenerateEps = 1e-12 // below this a cross product is treated as zero
	asphereIter   = 32
	asphereTol    = 1e-13
)
