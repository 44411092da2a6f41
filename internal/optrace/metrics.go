package optrace

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TraceMetrics counts traces and ray fates. A nil *TraceMetrics records nothing.
type TraceMetrics struct {
	traces      prometheus.Counter
	rays        prometheus.Counter
	invalidated *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewTraceMetrics registers the collectors on reg; it panics like promauto on
// duplicate registration.
func NewTraceMetrics(reg prometheus.Registerer) *TraceMetrics {
	f := promauto.With(reg)
	return &TraceMetrics{
		traces: f.NewCounter(prometheus.CounterOpts{
			Namespace: "optrace",
			Name:      "traces_total",
			Help:      "Sequential traces completed",
		}),
		rays: f.NewCounter(prometheus.CounterOpts{
			Namespace: "optrace",
			Name:      "rays_total",
			Help:      "Rays entering sequential traces",
		}),
		// reason: missed, clipped, tir, nan
		invalidated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "optrace",
			Name:      "rays_invalidated_total",
			Help:      "Rays invalidated during tracing, by reason",
		}, []string{"reason"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "optrace",
			Name:      "trace_duration_seconds",
			Help:      "Wall time of one sequential trace",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
}

// observe records one finished trace from its initial and final statuses.
func (m *TraceMetrics) observe(initial, final []RayStatus, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.traces.Inc()
	m.rays.Add(float64(len(initial)))
	m.duration.Observe(elapsed.Seconds())
	for i, s := range final {
		if s != RayAlive && initial[i] == RayAlive {
			m.invalidated.WithLabelValues(s.String()).Inc()
		}
	}
}
