// Package errors defines the error taxonomy for the tlsdiag library.
package errors

import "fmt"

// VerificationError reports that a peer or local certificate chain failed
// trust validation. Delegate verifiers produce it; the diagnostic layer logs
// it and re-returns it unchanged, never retrying.
type VerificationError struct {
	// Reason is a short human-readable description of the failure.
	Reason string
	// Err is the underlying cause, typically an x509 verification error.
	Err error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("certificate verification failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("certificate verification failed: %s", e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// ConnectError reports a failure to establish the underlying transport or to
// complete the handshake. Delegate factories produce it; the diagnostic layer
// logs it and re-returns it unchanged.
type ConnectError struct {
	// Op names the failed operation, e.g. "dial" or "handshake".
	Op string
	// Host and Port identify the remote endpoint.
	Host string
	Port int
	// Err is the underlying cause.
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ErrNotInitialized is returned when a connection factory is used before the
// owning security context has been initialized.
var ErrNotInitialized = fmt.Errorf("security context is not initialized")
