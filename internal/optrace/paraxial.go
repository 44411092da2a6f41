package optrace

import (
	"fmt"
	"math"
)

// ParaxialResult holds first-order properties of a sequence at one wavelength.
// Distances are in mm along the unfolded axis. Pupil and image positions that
// lie at infinity are reported as ±Inf.
type ParaxialResult struct {
	Wavelength Real
	// System runs from just before the first step's vertex to just after the last one.
	System ABCD
	// EffectiveFocalLength is -1/C; +Inf for an afocal sequence.
	EffectiveFocalLength Real
	Afocal               bool
	// ImageDistance is where the first vertex plane is imaged, measured from the last vertex.
	ImageDistance Real
	// Magnification is A - BC/D: first vertex plane to its paraxial image.
	Magnification Real

	StopElement, StopSurface string
	StopIndex                int
	// ObjectToStop ends at the stop vertex, before the stop refracts.
	ObjectToStop ABCD
	StopToImage  ABCD
	// EntrancePupil is measured from the first vertex, ExitPupil from the last one.
	EntrancePupil, ExitPupil Real
	// Pupil magnifications are pupil diameter per stop diameter.
	EntrancePupilMagnification, ExitPupilMagnification Real
}

// centralCurvature is the vertex curvature; planes and nil shapes give zero.
func centralCurvature(sh Shape) Real {
	switch v := sh.(type) {
	case *Conic:
		return v.Curvature
	case *Asphere:
		return v.Curvature
	}
	return 0
}

// interfaceMatrix refracts (or reflects) at the vertex of step r.
func interfaceMatrix(r resolvedStep) ABCD {
	c := centralCurvature(r.s.Shape)
	if r.opts.IsMirror {
		return ABCD{M: [2][2]Real{{1, 0}, {2 * c, 1}}}
	}
	if r.markerOnly {
		return I2()
	}
	n1, n2 := real(r.nBefore), real(r.nAfter)
	return ABCD{M: [2][2]Real{{1, 0}, {(n1 - n2) * c / n2, n1 / n2}}}
}

func translation(d Real) ABCD {
	return ABCD{M: [2][2]Real{{1, d}, {0, 1}}}
}

// stepMatrices returns, per step, the interface followed by the translation to
// the next vertex. The last step has no translation.
func stepMatrices(steps []resolvedStep) []ABCD {
	out := make([]ABCD, len(steps))
	for i, r := range steps {
		m := interfaceMatrix(r)
		if i+1 < len(steps) {
			d := steps[i+1].s.LC.Origin().Sub(r.s.LC.Origin()).Len()
			m = translation(d).Mul(m)
		}
		out[i] = m
	}
	return out
}

func chain(ms []ABCD) ABCD {
	acc := I2()
	for _, m := range ms {
		acc = m.Mul(acc)
	}
	return acc
}

// Paraxial computes the ABCD matrix of seq at wavelength together with focal
// length, magnification and the pupils of the first IsStop step. Vertex
// curvatures, real parts of the step indices and vertex-to-vertex distances
// are used; tilts and decenters are ignored. A sequence without a stop step
// is rejected.
func (s *OpticalSystem) Paraxial(seq Sequence, wavelength Real) (*ParaxialResult, error) {
	if !(wavelength > 0) || !isFinite(wavelength) {
		return nil, fmt.Errorf("paraxial wavelength %.6g mm: %w", wavelength, ErrInvalidConfig)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps, err := s.resolve(seq, nil, wavelength)
	if err != nil {
		return nil, err
	}
	stop := -1
	for i, r := range steps {
		if r.opts.IsStop {
			stop = i
			break
		}
	}
	if stop < 0 {
		return nil, fmt.Errorf("paraxial pupils need a stop step in %s: %w", seq, ErrInvalidConfig)
	}

	ms := stepMatrices(steps)
	res := &ParaxialResult{
		Wavelength:   wavelength,
		System:       chain(ms),
		StopElement:  steps[stop].element,
		StopSurface:  steps[stop].surface,
		StopIndex:    stop,
		ObjectToStop: chain(ms[:stop]),
		StopToImage:  chain(ms[stop:]),
	}
	A, B, C, D := res.System.M[0][0], res.System.M[0][1], res.System.M[1][0], res.System.M[1][1]
	if C == 0 {
		res.Afocal = true
		res.EffectiveFocalLength = math.Inf(1)
	} else {
		res.EffectiveFocalLength = -1 / C
	}
	res.ImageDistance = -B / D
	res.Magnification = A - B*C/D

	obj := res.ObjectToStop.M
	res.EntrancePupil = obj[0][1] / obj[0][0]
	res.EntrancePupilMagnification = 1 / obj[0][0]
	si := res.StopToImage.M
	res.ExitPupil = -si[0][1] / si[1][1]
	res.ExitPupilMagnification = si[0][0] - si[0][1]*si[1][0]/si[1][1]

	s.logger.Debug("paraxial",
		"sequence", seq.String(),
		"wavelength", wavelength,
		"efl", res.EffectiveFocalLength,
		"stop", res.StopSurface,
	)
	return res, nil
}
