// Package services contains the diagnostic decorators that wrap the TLS
// capability interfaces. Every wrapper holds exactly one delegate and
// forwards every call, interposing logging before and after; the delegate's
// results and errors are returned unchanged.
package services

// MetricsReporter receives counters from the diagnostic layer. An
// implementation lives in internal/adapters/metrics; the no-op reporter is
// the default so the core works without a metrics backend.
type MetricsReporter interface {
	// RecordVerification counts one trust-verification outcome for the
	// given peer role.
	RecordVerification(role string, trusted bool)
	// RecordSelectionMiss counts one "no usable identity" outcome.
	RecordSelectionMiss(role string)
	// RecordConnect counts one connection attempt outcome.
	RecordConnect(success bool)
	// RecordHandshakeComplete counts one observer firing, labelled by the
	// negotiated protocol version.
	RecordHandshakeComplete(protocol string)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

// RecordVerification implements MetricsReporter.
func (NopMetrics) RecordVerification(string, bool) {}

// RecordSelectionMiss implements MetricsReporter.
func (NopMetrics) RecordSelectionMiss(string) {}

// RecordConnect implements MetricsReporter.
func (NopMetrics) RecordConnect(bool) {}

// RecordHandshakeComplete implements MetricsReporter.
func (NopMetrics) RecordHandshakeComplete(string) {}
