package access

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for role resolution.
type Metrics struct {
	resolutions   *prometheus.CounterVec
	parseFailures *prometheus.CounterVec
}

// NewMetrics registers the access metrics against registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kindred_role_resolutions_total",
		Help: "Admin role resolutions partitioned by source.",
	}, []string{"source"})
	parseFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kindred_role_parse_failures_total",
		Help: "Stored or asserted role values rejected while resolving admin access.",
	}, []string{"field"})
	registerer.MustRegister(resolutions, parseFailures)
	return &Metrics{resolutions: resolutions, parseFailures: parseFailures}
}

func (m *Metrics) observe(res Resolution, anomaly *Anomaly) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(string(res.Source)).Inc()
	if anomaly != nil {
		m.parseFailures.WithLabelValues(anomaly.Field).Inc()
	}
}
