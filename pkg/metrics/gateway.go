package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records latency and outcome counts for payment gateway calls.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway collectors on the given registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tradesphere",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Duration of payment gateway HTTP calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		success: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradesphere",
				Subsystem: "gateway",
				Name:      "requests_success_total",
				Help:      "Count of successful payment gateway calls.",
			},
			[]string{"operation"},
		),
		failure: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradesphere",
				Subsystem: "gateway",
				Name:      "requests_failure_total",
				Help:      "Count of failed payment gateway calls.",
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(m.duration, m.success, m.failure)
	return m
}

// ObserveDuration records the elapsed time of a gateway call. Nil receivers
// no-op so callers can skip wiring metrics in tests.
func (m *GatewayMetrics) ObserveDuration(operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *GatewayMetrics) IncSuccess(operation string) {
	if m == nil {
		return
	}
	m.success.WithLabelValues(operation).Inc()
}

func (m *GatewayMetrics) IncFailure(operation string) {
	if m == nil {
		return
	}
	m.failure.WithLabelValues(operation).Inc()
}
