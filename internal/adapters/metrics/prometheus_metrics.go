// Package metrics provides the Prometheus-based implementation of the
// diagnostic layer's metrics reporting.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sufield/tlsdiag/internal/core/services"
)

var (
	verificationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tlsdiag_verification_total",
		Help: "Total number of trust verification outcomes",
	}, []string{"role", "trusted"})

	selectionMissCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tlsdiag_selection_miss_total",
		Help: "Total number of identity selections that found no usable alias",
	}, []string{"role"})

	connectCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tlsdiag_connect_total",
		Help: "Total number of connection attempts",
	}, []string{"success"})

	handshakeCompleteCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tlsdiag_handshake_complete_total",
		Help: "Total number of handshake-completion observer firings",
	}, []string{"protocol"})
)

// PrometheusMetrics implements services.MetricsReporter using Prometheus.
type PrometheusMetrics struct{}

// NewPrometheusMetrics creates a new Prometheus metrics reporter.
func NewPrometheusMetrics() services.MetricsReporter {
	return &PrometheusMetrics{}
}

// RecordVerification records a trust verification outcome.
func (m *PrometheusMetrics) RecordVerification(role string, trusted bool) {
	verificationCounter.WithLabelValues(role, strconv.FormatBool(trusted)).Inc()
}

// RecordSelectionMiss records an identity selection that found nothing.
func (m *PrometheusMetrics) RecordSelectionMiss(role string) {
	selectionMissCounter.WithLabelValues(role).Inc()
}

// RecordConnect records a connection attempt outcome.
func (m *PrometheusMetrics) RecordConnect(success bool) {
	connectCounter.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordHandshakeComplete records an observer firing.
func (m *PrometheusMetrics) RecordHandshakeComplete(protocol string) {
	handshakeCompleteCounter.WithLabelValues(protocol).Inc()
}
