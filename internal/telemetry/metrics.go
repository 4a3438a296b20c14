// internal/telemetry/metrics.go
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects operation counts, latencies, errors, and cache
// behavior across all series served by a chronoindexd process. Its
// metric vectors are registered by NewMetrics with the Registerer it is
// given, which can then be exposed over HTTP.
type Metrics struct {
	pushTotal      *prometheus.CounterVec
	queryTotal     *prometheus.CounterVec
	errorTotal     *prometheus.CounterVec
	opLatency      *prometheus.HistogramVec
	cacheMisses    prometheus.Counter
	seriesGauge    prometheus.Gauge
}

// NewMetrics constructs a Metrics instance with all vectors registered
// against reg. Passing prometheus.NewRegistry() keeps test processes
// from fighting over the global default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pushTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronoindex",
			Name:      "push_total",
			Help:      "Total number of values pushed, by series.",
		}, []string{"series"}),
		queryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronoindex",
			Name:      "query_total",
			Help:      "Total number of queries served, by series and query kind.",
		}, []string{"series", "kind"}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronoindex",
			Name:      "error_total",
			Help:      "Total number of operation errors, by series and kind.",
		}, []string{"series", "kind"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chronoindex",
			Name:      "operation_duration_seconds",
			Help:      "Latency of push and query operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chronoindex",
			Name:      "cache_misses_total",
			Help:      "Total number of recent-tier cache misses across all lines and series.",
		}),
		seriesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chronoindex",
			Name:      "series_count",
			Help:      "Number of series currently registered.",
		}),
	}
	reg.MustRegister(m.pushTotal, m.queryTotal, m.errorTotal, m.opLatency, m.cacheMisses, m.seriesGauge)
	return m
}

// ObservePush records a completed push for series.
func (m *Metrics) ObservePush(series string, d time.Duration) {
	m.pushTotal.WithLabelValues(series).Inc()
	m.opLatency.WithLabelValues("push").Observe(d.Seconds())
}

// ObserveQuery records a completed query of the given kind for series.
func (m *Metrics) ObserveQuery(series, kind string, d time.Duration) {
	m.queryTotal.WithLabelValues(series, kind).Inc()
	m.opLatency.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveError records a failed operation.
func (m *Metrics) ObserveError(series, kind string) {
	m.errorTotal.WithLabelValues(series, kind).Inc()
}

// AddCacheMisses adds delta newly observed cache misses to the running
// total.
func (m *Metrics) AddCacheMisses(delta uint64) {
	m.cacheMisses.Add(float64(delta))
}

// SetSeriesCount sets the current number of registered series.
func (m *Metrics) SetSeriesCount(n int) {
	m.seriesGauge.Set(float64(n))
}
