// Package tlsdiag turns opaque TLS handshake failures into structured,
// attributable diagnostics. It wraps the building blocks of a TLS context -
// trust verification, local-identity selection and connection establishment -
// so that every security-relevant decision during a handshake is observable
// without changing the outcome of that decision.
//
// A caller obtains a facade through one of two paths:
//
//	// Path a: intercept initialization of a fresh context.
//	facade, err := tlsdiag.WrapUninitialized("TLSv1.3")
//	err = facade.Init(verifier, selector)
//
//	// Path b: instrument connections of an already-initialized context.
//	facade := tlsdiag.WrapInitialized(ctx)
//
// Connections created through facade.SocketFactory() carry a one-shot
// handshake-completion observer; the session inspector works against the
// context's session cache at any time.
package tlsdiag

import (
	"crypto"
	"crypto/x509"
	"time"

	"github.com/sufield/tlsdiag/internal/adapters/logging"
	"github.com/sufield/tlsdiag/internal/adapters/stdtls"
	"github.com/sufield/tlsdiag/internal/core/domain"
	"github.com/sufield/tlsdiag/internal/core/ports"
	"github.com/sufield/tlsdiag/internal/core/services"
)

// Re-exported contracts. Any conforming implementation can be wrapped or
// injected; the stdtls-backed defaults below cover the common case.
type (
	// Logger is the structured logging capability injected into every
	// wrapped component.
	Logger = ports.Logger
	// LogAttribute is a key-value pair for structured log output.
	LogAttribute = ports.LogAttribute
	// TrustVerifier is the trust-verification capability.
	TrustVerifier = ports.TrustVerifier
	// IdentitySelector is the local-identity-selection capability.
	IdentitySelector = ports.IdentitySelector
	// Dialer is the client connection-establishment capability.
	Dialer = ports.Dialer
	// ListenerFactory is the server connection-establishment capability.
	ListenerFactory = ports.ListenerFactory
	// Conn is an instrumentable connection.
	Conn = ports.Conn
	// HandshakeInfo is delivered to handshake-completion observers.
	HandshakeInfo = ports.HandshakeInfo
	// SecurityContext is an underlying TLS context.
	SecurityContext = ports.SecurityContext
	// SessionCache is an enumerable session collection.
	SessionCache = ports.SessionCache
	// SessionRecord is the negotiated state of one handshake.
	SessionRecord = domain.SessionRecord
	// IdentityBundle is a certificate chain plus matching private key.
	IdentityBundle = domain.IdentityBundle
	// TrustAnchorSet is a set of trusted root certificates.
	TrustAnchorSet = domain.TrustAnchorSet
	// Facade composes the diagnostic wrappers around a context.
	Facade = services.Facade
	// Option configures a facade.
	Option = services.Option
)

// WithLogger injects a logger into a facade and everything it wraps.
func WithLogger(logger Logger) Option { return services.WithLogger(logger) }

// WithMetrics injects a metrics reporter into a facade and everything it
// wraps.
func WithMetrics(metrics services.MetricsReporter) Option {
	return services.WithMetrics(metrics)
}

// WrapUninitialized creates a fresh crypto/tls-backed context for the given
// protocol name ("TLS", "TLSv1.2" or "TLSv1.3") and wraps it so that its
// initialization is intercepted: Init on the returned facade installs the
// diagnostic verifier and selector before the context ever uses them.
func WrapUninitialized(protocol string, opts ...Option) (*Facade, error) {
	inner, err := stdtls.NewContext(protocol)
	if err != nil {
		return nil, err
	}
	return services.WrapUninitialized(inner, withDefaultLogger(opts)...), nil
}

// WrapInitialized wraps an already-initialized context. Context-level info
// is logged immediately; only connection factories are instrumented, since
// verification and selection were installed upstream.
func WrapInitialized(inner SecurityContext, opts ...Option) *Facade {
	return services.WrapInitialized(inner, withDefaultLogger(opts)...)
}

// NewIdentityBundle validates and builds an identity bundle. The chain must
// be ordered leaf first.
func NewIdentityBundle(alias string, chain []*x509.Certificate, key crypto.Signer) (*IdentityBundle, error) {
	return domain.NewIdentityBundle(alias, chain, key)
}

// NewTrustAnchorSet validates and builds a trust anchor set.
func NewTrustAnchorSet(anchors []*x509.Certificate) (*TrustAnchorSet, error) {
	return domain.NewTrustAnchorSet(anchors)
}

// NewStandardVerifier returns a TrustVerifier validating chains against the
// given anchors with crypto/x509 path building.
func NewStandardVerifier(anchors *TrustAnchorSet) TrustVerifier {
	return stdtls.NewStandardVerifier(anchors)
}

// NewStaticSelector returns an IdentitySelector over the given bundles.
func NewStaticSelector(bundles ...*IdentityBundle) IdentitySelector {
	return stdtls.NewStaticSelector(bundles...)
}

// MostRecentSession returns the newest session in the cache, or nil when it
// is empty.
func MostRecentSession(cache SessionCache) *SessionRecord {
	return services.MostRecentSession(cache)
}

// DiagnosticReport renders a session as human-readable diagnostic text.
// Certificate validity is recomputed against the current clock on every
// call; the function never fails, degrading missing data to explicit
// markers. The output is for humans, not a machine-parseable contract.
func DiagnosticReport(session *SessionRecord) string {
	return services.DiagnosticReport(session)
}

// DiagnosticReportAt renders the report as of the given instant.
func DiagnosticReportAt(session *SessionRecord, now time.Time) string {
	return services.DiagnosticReportAt(session, now)
}

// SetDefaultLogger overrides the process-wide default logger used by facades
// created without WithLogger. Passing nil resets to the built-in default, a
// debug-level text logger on stdout.
func SetDefaultLogger(logger Logger) {
	logging.SetDefault(logger)
}

// withDefaultLogger prepends the process default so an explicit WithLogger
// in opts still wins.
func withDefaultLogger(opts []Option) []Option {
	return append([]Option{services.WithLogger(logging.Default())}, opts...)
}
