package services

import (
	"fmt"
	"strings"

	"github.com/sufield/tlsdiag/internal/core/domain"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// Facade composes the diagnostic wrappers around a SecurityContext. It is
// obtained through one of two paths:
//
//   - WrapUninitialized intercepts the context's initialization so the
//     verifier and selector are wrapped before the context ever sees them.
//   - WrapInitialized takes a context whose initialization already happened
//     upstream and instruments connections only; verification and selection
//     cannot be wrapped retroactively.
//
// The facade holds no state beyond its collaborators and is safe for
// concurrent use.
type Facade struct {
	inner   ports.SecurityContext
	logger  ports.Logger
	metrics MetricsReporter
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger injects the logger used by the facade and every wrapper it
// creates.
func WithLogger(logger ports.Logger) Option {
	return func(f *Facade) { f.logger = logger }
}

// WithMetrics injects the metrics reporter used by the facade and every
// wrapper it creates.
func WithMetrics(metrics MetricsReporter) Option {
	return func(f *Facade) { f.metrics = metrics }
}

func newFacade(inner ports.SecurityContext, opts []Option) *Facade {
	f := &Facade{inner: inner, logger: ports.NopLogger{}, metrics: NopMetrics{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WrapUninitialized wraps a context that has not been initialized yet. The
// returned facade's Init installs wrapped capabilities into the context;
// context-level info is logged once initialization completes.
func WrapUninitialized(inner ports.SecurityContext, opts ...Option) *Facade {
	return newFacade(inner, opts)
}

// WrapInitialized wraps an already-initialized context. Context-level info
// is logged immediately; only connection factories are instrumented.
func WrapInitialized(inner ports.SecurityContext, opts ...Option) *Facade {
	f := newFacade(inner, opts)
	f.logContextInfo()
	return f
}

// Init wraps the given capabilities with their diagnostic decorators, then
// delegates initialization to the underlying context. Initialization is a
// one-time transition; re-initialization semantics are whatever the wrapped
// context defines. A nil selector is passed through as nil, meaning no local
// identity is presented.
func (f *Facade) Init(verifier ports.TrustVerifier, selector ports.IdentitySelector) error {
	var wrappedSelector ports.IdentitySelector
	if selector != nil {
		wrappedSelector = NewDiagnosticIdentitySelector(selector, f.logger, f.metrics)
	}
	wrappedVerifier := NewDiagnosticTrustVerifier(verifier, f.logger, f.metrics)

	if err := f.inner.Init(wrappedVerifier, wrappedSelector); err != nil {
		return fmt.Errorf("initializing security context: %w", err)
	}
	f.logContextInfo()
	return nil
}

// Inner returns the wrapped context.
func (f *Facade) Inner() ports.SecurityContext { return f.inner }

// SocketFactory returns the instrumented client connection factory.
func (f *Facade) SocketFactory() ports.Dialer {
	return NewDiagnosticDialer(f.inner.ClientFactory(), f.logger, f.metrics)
}

// ServerSocketFactory returns the instrumented server connection factory.
func (f *Facade) ServerSocketFactory() ports.ListenerFactory {
	return NewDiagnosticListenerFactory(f.inner.ServerFactory(), f.logger, f.metrics)
}

// Sessions returns the underlying context's client session cache.
func (f *Facade) Sessions() ports.SessionCache { return f.inner.Sessions() }

// MostRecentSession returns the newest session in the underlying context's
// cache, or nil when the cache is empty.
func (f *Facade) MostRecentSession() *domain.SessionRecord {
	return MostRecentSession(f.inner.Sessions())
}

// logContextInfo emits the context-level block: protocol, provider, and the
// default and supported protocol and cipher lists.
func (f *Facade) logContextInfo() {
	if !f.logger.Enabled(ports.LogLevelDebug) {
		return
	}
	var sb strings.Builder
	sb.WriteString("TLS context info:\n")
	fmt.Fprintf(&sb, "  Protocol : %s\n", f.inner.Protocol())
	fmt.Fprintf(&sb, "  Provider : %s\n", f.inner.Provider())
	fmt.Fprintf(&sb, "  Default protocols   : %s\n", strings.Join(f.inner.DefaultProtocols(), ", "))
	fmt.Fprintf(&sb, "  Default ciphers     : %s\n", strings.Join(f.inner.DefaultCipherSuites(), ", "))
	fmt.Fprintf(&sb, "  Supported protocols : %s\n", strings.Join(f.inner.SupportedProtocols(), ", "))
	f.logger.Debug(sb.String())
}
