package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather core.
type Metrics struct {
	StationLoads    *prometheus.CounterVec   // labels: result={success,error}
	Refreshes       *prometheus.CounterVec   // labels: kind={now,forecast}, result={success,error}
	SourceDuration  *prometheus.HistogramVec // labels: endpoint={now,forecast,webcams,radar}
	DismissedAlerts prometheus.Gauge
}

// NewMetrics creates and registers all core metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StationLoads,
		m.Refreshes,
		m.SourceDuration,
		m.DismissedAlerts,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StationLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appski_weather",
			Name:      "station_loads_total",
			Help:      "Station load attempts by result.",
		}, []string{"result"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appski_weather",
			Name:      "refreshes_total",
			Help:      "Background refreshes by kind and result.",
		}, []string{"kind", "result"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "appski_weather",
			Name:      "source_request_duration_seconds",
			Help:      "Data source request duration by endpoint.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		DismissedAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "appski_weather",
			Name:      "dismissed_alerts",
			Help:      "Number of alert IDs in the persisted dismissed set.",
		}),
	}
}
