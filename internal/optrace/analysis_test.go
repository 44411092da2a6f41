package optrace

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestAnalysis_TraceRecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	sys, seq := dropletSystem(t, waterMaterial(t))
	an, err := NewAnalysis(sys, seq, WithTracerProvider(tp))
	require.NoError(t, err)

	path, err := an.Trace(context.Background(), dropletBundle(t, 0.6e-3))
	require.NoError(t, err)
	require.Equal(t, 5, path.Len())

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "optrace.SeqTrace", spans[0].Name())
	v, ok := spanAttr(spans[0], "optrace.rays")
	require.True(t, ok)
	assert.Equal(t, int64(11), v.AsInt64())
	v, ok = spanAttr(spans[0], "optrace.steps")
	require.True(t, ok)
	assert.Equal(t, int64(5), v.AsInt64())
	v, ok = spanAttr(spans[0], "optrace.rays_alive")
	require.True(t, ok)
	assert.Equal(t, int64(11), v.AsInt64())

	// a failing trace marks the span
	_, err = an.Trace(context.Background(), dropletBundle(t, 0.3e-3))
	require.ErrorIs(t, err, ErrMaterialDomain)
	spans = rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.NotEmpty(t, spans[1].Events(), "error recorded as an event")
}

func TestAnalysis_RejectsBadSequence(t *testing.T) {
	sys, seq := dropletSystem(t, waterMaterial(t))
	_, err := NewAnalysis(sys, Sequence{{Element: "droplet", Steps: []SurfaceStep{{Surface: "lens"}}}})
	assert.ErrorIs(t, err, ErrUnknownReference)
	_, err = NewAnalysis(nil, seq)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	an, err := NewAnalysis(sys, seq)
	require.NoError(t, err)
	_, err = an.Trace(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAnalysis_TraceWavelengthsKeepsOrder(t *testing.T) {
	sys, seq := dropletSystem(t, waterMaterial(t))
	an, err := NewAnalysis(sys, seq)
	require.NoError(t, err)
	wls := []Real{0.70e-3, 0.47e-3, 0.55e-3, 0.65e-3}
	bundles := make([]*RayBundle, len(wls))
	for i, wl := range wls {
		bundles[i] = dropletBundle(t, wl)
	}
	paths, err := an.TraceWavelengths(context.Background(), bundles)
	require.NoError(t, err)
	require.Len(t, paths, len(wls))
	for i, p := range paths {
		assert.Equal(t, wls[i], p.Initial.Wavelength)
		assert.Same(t, bundles[i], p.Initial)
		// same result as a direct trace
		direct, err := sys.SeqTrace(bundles[i], seq)
		require.NoError(t, err)
		assert.Equal(t, direct.Last().X, p.Last().X)
	}

	bundles = append(bundles, dropletBundle(t, 0.3e-3))
	_, err = an.TraceWavelengths(context.Background(), bundles)
	assert.ErrorIs(t, err, ErrMaterialDomain)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = an.TraceWavelengths(ctx, bundles[:1])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalysis_SpotAndFootprint(t *testing.T) {
	sys, seq := dropletSystem(t, waterMaterial(t))
	an, err := NewAnalysis(sys, seq)
	require.NoError(t, err)
	path, err := an.Trace(context.Background(), dropletBundle(t, 0.7e-3))
	require.NoError(t, err)

	spot, err := an.Spot(path)
	require.NoError(t, err)
	assert.Equal(t, 11, spot.Alive)
	assert.Len(t, spot.X, 11)
	assert.Equal(t, 0.7e-3, spot.Wavelength)
	// image frame is the stop plane: local equals global here
	c, ok := Centroid(path.Last())
	require.True(t, ok)
	assert.InDelta(t, c.Y, spot.CentroidY, 1e-12)
	assert.InDelta(t, c.X, spot.CentroidX, 1e-12)
	assert.InDelta(t, RMSSpotSizeCentroid(path.Last()), spot.RMS, 1e-12)
	assert.Greater(t, spot.RMS, 0.0)

	x, y, err := an.Footprint(path, "droplet", "surf1")
	require.NoError(t, err)
	require.Len(t, x, 11)
	for i := range x {
		// all on the front cap of the 0.1 sphere
		assert.Less(t, math.Hypot(x[i], y[i]), 0.1)
	}
	_, _, err = an.Footprint(path, "droplet", "nope")
	assert.ErrorIs(t, err, ErrUnknownReference)

	_, err = an.Spot(&RayPath{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.InDelta(t, 1, Transmission(path), 0)
}

func TestAnalysis_SpotWithNoSurvivors(t *testing.T) {
	sys := planeSystem(t, nil, []planeStep{
		{name: "a", frame: FrameSpec{Name: "a", Decenter: Vector3{Z: 1}}, aperture: 0.01},
	})
	an, err := NewAnalysis(sys, seqOf(SurfaceStep{Surface: "a"}))
	require.NoError(t, err)
	path, err := an.Trace(context.Background(), parallelBundle(t, []Vector3{{Y: 1}}, Vector3{Z: 1}, 1, StandardWavelength))
	require.NoError(t, err)
	spot, err := an.Spot(path)
	require.NoError(t, err)
	assert.Zero(t, spot.Alive)
	assert.True(t, math.IsNaN(spot.CentroidX))
	assert.True(t, math.IsNaN(spot.RMS))
	_, ok := Centroid(path.Last())
	assert.False(t, ok)
	assert.True(t, math.IsNaN(RMSSpotSizeCentroid(path.Last())))
}
