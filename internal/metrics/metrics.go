// Package metrics provides Prometheus metrics for the prime API behind a
// capability interface. The real exporter and the no-op implementation are
// selected once at startup; callers never branch on whether telemetry is
// enabled.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the telemetry capability consumed by the service, the worker
// pool, and the prime cache.
type Recorder interface {
	// IncTasksSubmitted counts accepted computation requests.
	IncTasksSubmitted()

	// IncTasksCompleted counts tasks that reached the done state.
	IncTasksCompleted()

	// IncTasksFailed counts tasks that reached the failed state, labeled by
	// failure reason.
	IncTasksFailed(reason string)

	// IncTasksActive / DecTasksActive track tasks currently executing.
	IncTasksActive()
	DecTasksActive()

	// IncCacheHit / IncCacheMiss count whether a request was covered by the
	// cached prefix or forced an extension.
	IncCacheHit()
	IncCacheMiss()

	// ObserveEnsureDuration records how long one cache extension took, in
	// seconds.
	ObserveEnsureDuration(seconds float64)

	// SetCacheWatermark records the current count of fully computed primes.
	SetCacheWatermark(n float64)
}

// PrometheusRecorder implements Recorder with Prometheus collectors on its
// own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	tasksSubmitted prometheus.Counter
	tasksCompleted prometheus.Counter
	tasksFailed    *prometheus.CounterVec
	tasksActive    prometheus.Gauge
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	ensureDuration prometheus.Histogram
	cacheWatermark prometheus.Gauge
}

// NewPrometheusRecorder creates a PrometheusRecorder and registers its
// collectors on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusRecorder{
		registry: registry,

		tasksSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "prime_api",
			Name:      "tasks_submitted_total",
			Help:      "Total accepted computation requests.",
		}),
		tasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "prime_api",
			Name:      "tasks_completed_total",
			Help:      "Total tasks that reached the done state.",
		}),
		tasksFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prime_api",
			Name:      "tasks_failed_total",
			Help:      "Total tasks that reached the failed state.",
		}, []string{"reason"}),
		tasksActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "prime_api",
			Name:      "tasks_active",
			Help:      "Number of currently executing tasks.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "prime_api",
			Name:      "cache_hits_total",
			Help:      "Requests fully covered by the cached prime prefix.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "prime_api",
			Name:      "cache_misses_total",
			Help:      "Requests that forced a cache extension.",
		}),
		ensureDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "prime_api",
			Name:      "ensure_duration_seconds",
			Help:      "Duration of one prime cache extension in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		cacheWatermark: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "prime_api",
			Name:      "cache_watermark",
			Help:      "Count of primes guaranteed fully computed and cached.",
		}),
	}
}

func (r *PrometheusRecorder) IncTasksSubmitted() { r.tasksSubmitted.Inc() }
func (r *PrometheusRecorder) IncTasksCompleted() { r.tasksCompleted.Inc() }

func (r *PrometheusRecorder) IncTasksFailed(reason string) {
	r.tasksFailed.WithLabelValues(reason).Inc()
}

func (r *PrometheusRecorder) IncTasksActive() { r.tasksActive.Inc() }
func (r *PrometheusRecorder) DecTasksActive() { r.tasksActive.Dec() }

func (r *PrometheusRecorder) IncCacheHit()  { r.cacheHits.Inc() }
func (r *PrometheusRecorder) IncCacheMiss() { r.cacheMisses.Inc() }

func (r *PrometheusRecorder) ObserveEnsureDuration(seconds float64) {
	r.ensureDuration.Observe(seconds)
}

func (r *PrometheusRecorder) SetCacheWatermark(n float64) {
	r.cacheWatermark.Set(n)
}

// Handler returns the /metrics exposition handler for this recorder's
// registry.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// NopRecorder implements Recorder with no-ops. Selected when metrics are
// disabled in configuration.
type NopRecorder struct{}

func (NopRecorder) IncTasksSubmitted()            {}
func (NopRecorder) IncTasksCompleted()            {}
func (NopRecorder) IncTasksFailed(string)         {}
func (NopRecorder) IncTasksActive()               {}
func (NopRecorder) DecTasksActive()               {}
func (NopRecorder) IncCacheHit()                  {}
func (NopRecorder) IncCacheMiss()                 {}
func (NopRecorder) ObserveEnsureDuration(float64) {}
func (NopRecorder) SetCacheWatermark(float64)     {}
