package ports

import (
	"time"
)

// SecurityContext is the underlying TLS context being instrumented. It
// aggregates identity material, trust configuration and the connection
// factories derived from them.
//
// A context is created uninitialized and transitions to initialized exactly
// once through Init. Re-initialization semantics are whatever the
// implementation defines; the diagnostic layer adds no idempotence of its
// own.
type SecurityContext interface {
	// Protocol returns the protocol name the context was created for,
	// e.g. "TLSv1.2" or "TLS".
	Protocol() string

	// Provider names the TLS engine backing this context.
	Provider() string

	// Initialized reports whether Init has completed successfully.
	Initialized() bool

	// Init installs the trust-verification and identity-selection
	// capabilities this context will use for every handshake. The caller
	// may pass wrapped capabilities; the context uses them as given.
	// A nil selector means no local identity is ever presented.
	Init(verifier TrustVerifier, selector IdentitySelector) error

	// ClientFactory returns the factory for outbound connections.
	ClientFactory() Dialer

	// ServerFactory returns the factory for listening sockets.
	ServerFactory() ListenerFactory

	// Sessions returns the context's client session cache.
	Sessions() SessionCache

	// DefaultProtocols lists the protocol versions enabled by default.
	DefaultProtocols() []string

	// SupportedProtocols lists every protocol version the engine supports.
	SupportedProtocols() []string

	// DefaultCipherSuites lists the cipher suites enabled by default.
	DefaultCipherSuites() []string

	// ClientCertificateExpiry returns the earliest NotAfter among the leaf
	// certificates the context can present as a client, and false when no
	// client identity is configured.
	ClientCertificateExpiry() (time.Time, bool)
}
