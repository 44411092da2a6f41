package optrace

// RayStatus records the fate of one ray. Anything but RayAlive is terminal:
// an invalid ray keeps its last valid position and is skipped by later steps.
type RayStatus uint8

const (
	RayAlive   RayStatus = iota // still propagating
	RayMissed                   // no real intersection ahead of the ray
	RayClipped                  // hit point outside the aperture
	RayTIR                      // total internal reflection at a refracting surface
	RayNaN                      // non-finite numbers from a degenerate geometry
)

var rayStatusNames = [...]string{
	RayAlive:   "alive",
	RayMissed:  "missed",
	RayClipped: "clipped",
	RayTIR:     "tir",
	RayNaN:     "nan",
}

func (s RayStatus) String() string {
	if int(s) < len(rayStatusNames) {
		return rayStatusNames[s]
	}
	return "unknown"
}

// PathStats counts final ray fates of a trace.
type PathStats struct {
	Rays   int
	Counts map[RayStatus]int
}

func countStatuses(status []RayStatus) PathStats {
	st := PathStats{Rays: len(status), Counts: make(map[RayStatus]int)}
	for _, s := range status {
		st.Counts[s]++
	}
	return st
}

func (s PathStats) Alive() int { return s.Counts[RayAlive] }
