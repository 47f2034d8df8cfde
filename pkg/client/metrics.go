package client

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors recorded by the client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	FailuresTotal   *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ojcli",
				Name:      "requests_total",
				Help:      "Total number of API requests issued",
			},
			[]string{"method", "outcome"}, // outcome=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ojcli",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		FailuresTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ojcli",
				Name:      "request_failures_total",
				Help:      "Failed API requests by classified kind",
			},
			[]string{"kind"},
		),
	}
}

// WriteTextfile dumps everything gathered by g in the node-exporter textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("client.WriteTextfile: %w", err)
	}
	return nil
}

func (m *Metrics) observe(method string, seconds float64, o Outcome) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
	if o.Kind == KindNone {
		m.RequestsTotal.WithLabelValues(method, "ok").Inc()
		return
	}
	m.RequestsTotal.WithLabelValues(method, "error").Inc()
	m.FailuresTotal.WithLabelValues(o.Kind.String()).Inc()
}
