package cli

import "errors"

// Sentinel errors for exit code classification
var (
	// ErrUsage indicates invalid command usage, flags, or arguments
	ErrUsage = errors.New("usage error")

	// ErrConfig indicates invalid or missing configuration
	ErrConfig = errors.New("configuration error")

	// ErrHandshake indicates a TLS handshake or verification failure
	ErrHandshake = errors.New("handshake error")

	// ErrInternal indicates internal system errors
	ErrInternal = errors.New("internal error")
)
