package optrace

import (
	"fmt"
	"time"
)

// SeqTrace walks initial (global coordinates) through seq and returns one segment
// per surface step. Unknown names and material range errors are reported before
// any ray moves. Per-ray failures only change RayStatus; the trace always runs to
// the end of the sequence.
func (s *OpticalSystem) SeqTrace(initial *RayBundle, seq Sequence) (*RayPath, error) {
	if initial == nil {
		return nil, fmt.Errorf("nil ray bundle: %w", ErrInvalidConfig)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps, err := s.resolve(seq, initial, initial.Wavelength)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	path := &RayPath{Initial: initial, Segments: make([]Segment, 0, len(steps))}
	cur := initial
	for i := range steps {
		st := &steps[i]
		seg := s.traceStep(cur, st)
		path.Segments = append(path.Segments, seg)
		cur = seg.Bundle
		s.logger.Debug("trace step",
			"step", i,
			"element", st.element,
			"surface", st.surface,
			"stop", st.opts.IsStop,
			"mirror", st.opts.IsMirror,
			"alive", cur.ValidCount(),
		)
	}
	s.metrics.observe(initial.Status, cur.Status, time.Since(start))
	s.logger.Info("trace done",
		"wavelength", initial.Wavelength,
		"steps", len(steps),
		"rays", initial.N(),
		"alive", cur.ValidCount(),
	)
	return path, nil
}

// traceStep moves cur onto one surface and applies that surface's law.
func (s *OpticalSystem) traceStep(cur *RayBundle, st *resolvedStep) Segment {
	lc := st.s.LC
	local := &RayBundle{
		X:          lc.GlobalToLocalPoints(cur.X),
		K:          lc.GlobalToLocalCVectors(cur.K),
		E:          lc.GlobalToLocalCVectors(cur.E),
		Status:     cur.Status,
		Wavelength: cur.Wavelength,
	}
	hit := st.s.Intersect(local)

	k, e, status := local.K, local.E, hit.Status
	switch {
	case st.markerOnly:
	case !st.opts.IsMirror && st.nBefore == st.nAfter:
		// no index step: geometry only
	default:
		in := RefractInput{
			K:           local.K,
			E:           local.E,
			Normal:      st.s.Normal(hit.Points),
			Status:      hit.Status,
			Wavelength:  cur.Wavelength,
			IndexBefore: st.nBefore,
			IndexAfter:  st.nAfter,
			Mirror:      st.opts.IsMirror,
		}
		law := st.after
		if st.opts.IsMirror {
			in.IndexAfter = st.nBefore
			law = st.before
		}
		out := law.Refract(in)
		k, e, status = out.K, out.E, out.Status
		checkStep(s.logger, st, k, status, cur.Wavenumber())
	}

	next := &RayBundle{
		X:          lc.LocalToGlobalPoints(hit.Points),
		K:          lc.LocalToGlobalCVectors(k),
		E:          lc.LocalToGlobalCVectors(e),
		Status:     status,
		Wavelength: cur.Wavelength,
	}
	t := hit.T
	for i := range status {
		if status[i] == RayAlive && !(next.X.At(i).finite() && next.K.At(i).finite() && next.E.At(i).finite()) {
			status[i] = RayNaN
		}
		if status[i] != RayAlive {
			next.X.Set(i, cur.X.At(i))
			next.K.Set(i, cur.K.At(i))
			next.E.Set(i, cur.E.At(i))
			t[i] = 0
		}
	}
	return Segment{
		Element: st.element,
		Surface: st.surface,
		Options: st.opts,
		Bundle:  next,
		T:       t,
		surface: st.s,
	}
}
