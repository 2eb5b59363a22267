// Package metrics provides Prometheus metrics for the techcv client.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for client operations.
// If enabled is false every recording method is a no-op.
type Metrics struct {
	enabled bool

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	sessionTransitionsTotal *prometheus.CounterVec
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techcv_client_requests_total",
		Help: "Total backend API requests",
	}, []string{"operation", "status"})

	m.requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "techcv_client_request_duration_seconds",
		Help:    "Backend API request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	m.sessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techcv_client_session_transitions_total",
		Help: "Session status transitions",
	}, []string{"from", "to"})

	return m
}

// RecordRequest records one backend request. A status of 0 means no
// response was received.
func (m *Metrics) RecordRequest(operation string, status int, durationSeconds float64) {
	if !m.enabled {
		return
	}
	m.requestsTotal.WithLabelValues(operation, statusLabel(status)).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordSessionTransition records a session status change.
func (m *Metrics) RecordSessionTransition(from, to string) {
	if !m.enabled {
		return
	}
	m.sessionTransitionsTotal.WithLabelValues(from, to).Inc()
}

func statusLabel(status int) string {
	if status == 0 {
		return "transport_error"
	}
	return strconv.Itoa(status)
}
