package optrace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Analysis binds a system to one sequence and derives spot and footprint data
// from traces.
type Analysis struct {
	sys    *OpticalSystem
	seq    Sequence
	logger *slog.Logger
	tracer trace.Tracer
}

type AnalysisOption func(*Analysis)

func WithAnalysisLogger(l *slog.Logger) AnalysisOption {
	return func(a *Analysis) { a.logger = l }
}

// WithTracerProvider sets where spans go; the global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) AnalysisOption {
	return func(a *Analysis) { a.tracer = tp.Tracer("optrace") }
}

// NewAnalysis validates seq against sys up front.
func NewAnalysis(sys *OpticalSystem, seq Sequence, opts ...AnalysisOption) (*Analysis, error) {
	if sys == nil {
		return nil, fmt.Errorf("analysis needs a system: %w", ErrInvalidConfig)
	}
	if err := sys.Validate(seq); err != nil {
		return nil, err
	}
	a := &Analysis{sys: sys, seq: seq}
	for _, o := range opts {
		o(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer("optrace")
	}
	return a, nil
}

func (a *Analysis) Sequence() Sequence { return a.seq }

// Trace runs one sequential trace inside a span.
func (a *Analysis) Trace(ctx context.Context, b *RayBundle) (*RayPath, error) {
	if b == nil {
		return nil, fmt.Errorf("nil ray bundle: %w", ErrInvalidConfig)
	}
	_, span := a.tracer.Start(ctx, "optrace.SeqTrace",
		trace.WithAttributes(
			attribute.Float64("optrace.wavelength_mm", b.Wavelength),
			attribute.Int("optrace.rays", b.N()),
			attribute.Int("optrace.steps", a.seq.Len()),
		),
	)
	defer span.End()

	path, err := a.sys.SeqTrace(b, a.seq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("optrace.rays_alive", path.Last().ValidCount()))
	return path, nil
}

// TraceWavelengths traces the bundles concurrently against the same system;
// paths come back in input order.
func (a *Analysis) TraceWavelengths(ctx context.Context, bundles []*RayBundle) ([]*RayPath, error) {
	paths := make([]*RayPath, len(bundles))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range bundles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := a.Trace(gctx, b)
			if err != nil {
				return fmt.Errorf("bundle %d (%.6g mm): %w", i, b.Wavelength, err)
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.logger.Info("wavelengths traced", "bundles", len(bundles))
	return paths, nil
}

// SpotResult is the ray distribution on the final surface, in that surface's frame.
type SpotResult struct {
	X, Y       []Real
	CentroidX  Real
	CentroidY  Real
	RMS        Real // RMS radius about the centroid
	Alive      int
	Wavelength Real
}

// Spot evaluates the last segment of path.
func (a *Analysis) Spot(path *RayPath) (SpotResult, error) {
	if path == nil || len(path.Segments) == 0 {
		return SpotResult{}, fmt.Errorf("empty ray path: %w", ErrInvalidConfig)
	}
	last := &path.Segments[len(path.Segments)-1]
	x, y := footprint(last)
	r := SpotResult{X: x, Y: y, Alive: len(x), Wavelength: last.Bundle.Wavelength}
	if len(x) == 0 {
		r.CentroidX, r.CentroidY, r.RMS = math.NaN(), math.NaN(), math.NaN()
		return r, nil
	}
	for i := range x {
		r.CentroidX += x[i]
		r.CentroidY += y[i]
	}
	r.CentroidX /= Real(len(x))
	r.CentroidY /= Real(len(x))
	var s2 Real
	for i := range x {
		dx, dy := x[i]-r.CentroidX, y[i]-r.CentroidY
		s2 += dx*dx + dy*dy
	}
	r.RMS = math.Sqrt(s2 / Real(len(x)))
	return r, nil
}

// Footprint returns local x, y of the alive rays at the first visit of a surface.
func (a *Analysis) Footprint(path *RayPath, element, surface string) (x, y []Real, err error) {
	seg, ok := path.Find(element, surface)
	if !ok {
		return nil, nil, fmt.Errorf("element %q surface %q not in path: %w", element, surface, ErrUnknownReference)
	}
	x, y = footprint(seg)
	return x, y, nil
}

func footprint(seg *Segment) (x, y []Real) {
	p := seg.LocalHitPoints()
	for i, st := range seg.Bundle.Status {
		if st == RayAlive {
			x = append(x, p.X[i])
			y = append(y, p.Y[i])
		}
	}
	return x, y
}

// Centroid is the mean global position of the alive rays; false when none are left.
func Centroid(b *RayBundle) (Vector3, bool) {
	var c Vector3
	n := 0
	for i, st := range b.Status {
		if st == RayAlive {
			c = c.Add(b.X.At(i))
			n++
		}
	}
	if n == 0 {
		return Vector3{}, false
	}
	return c.Mul(1 / Real(n)), true
}

// RMSSpotSizeCentroid is the RMS distance of the alive rays from their centroid.
func RMSSpotSizeCentroid(b *RayBundle) Real {
	c, ok := Centroid(b)
	if !ok {
		return math.NaN()
	}
	var s2 Real
	n := 0
	for i, st := range b.Status {
		if st == RayAlive {
			d := b.X.At(i).Sub(c)
			s2 += d.Dot(d)
			n++
		}
	}
	return math.Sqrt(s2 / Real(n))
}

// Transmission is the fraction of the initially alive rays that survive the whole path.
func Transmission(path *RayPath) Real {
	in := path.Initial.ValidCount()
	if in == 0 {
		return 0
	}
	return Real(path.Last().ValidCount()) / Real(in)
}
