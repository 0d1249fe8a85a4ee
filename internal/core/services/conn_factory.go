package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sufield/tlsdiag/internal/core/domain"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// DiagnosticDialer wraps a Dialer so every created connection carries a
// handshake-completion observer. Delegate failures are logged with their
// class and message and re-returned as the identical error value.
type DiagnosticDialer struct {
	delegate ports.Dialer
	logger   ports.Logger
	metrics  MetricsReporter
}

// NewDiagnosticDialer wraps delegate. Nil logger or metrics fall back to the
// no-op implementations.
func NewDiagnosticDialer(delegate ports.Dialer, logger ports.Logger, metrics MetricsReporter) *DiagnosticDialer {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &DiagnosticDialer{delegate: delegate, logger: logger, metrics: metrics}
}

// DialContext logs intent, delegates, and on success attaches the handshake
// observer and logs the socket configuration at debug level. The intent line
// always precedes the outcome line for a given connection.
func (d *DiagnosticDialer) DialContext(ctx context.Context, host string, port int) (ports.Conn, error) {
	d.logger.Debug("creating TLS connection",
		ports.LogAttribute{Key: "host", Value: host},
		ports.LogAttribute{Key: "port", Value: port})

	conn, err := d.delegate.DialContext(ctx, host, port)
	if err != nil {
		d.metrics.RecordConnect(false)
		d.logger.Warn(fmt.Sprintf("failed to create TLS connection to %s:%d - %T: %v", host, port, err, err))
		return nil, err
	}
	d.metrics.RecordConnect(true)

	attachObserver(conn, d.logger, d.metrics)
	if d.logger.Enabled(ports.LogLevelDebug) {
		d.logger.Debug(renderProfile(conn.Profile()))
	}
	return conn, nil
}

// DiagnosticListenerFactory wraps a ListenerFactory with an intent log line.
// No observer is attached at listen time; each accepted connection gets one
// through the wrapped listener's Accept.
type DiagnosticListenerFactory struct {
	delegate ports.ListenerFactory
	logger   ports.Logger
	metrics  MetricsReporter
}

// NewDiagnosticListenerFactory wraps delegate. Nil logger or metrics fall
// back to the no-op implementations.
func NewDiagnosticListenerFactory(delegate ports.ListenerFactory, logger ports.Logger, metrics MetricsReporter) *DiagnosticListenerFactory {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &DiagnosticListenerFactory{delegate: delegate, logger: logger, metrics: metrics}
}

// Listen logs intent and delegates. Failures are logged and re-returned
// unchanged; successes are wrapped so accepted connections carry the
// handshake observer.
func (f *DiagnosticListenerFactory) Listen(ctx context.Context, bindAddress string, port int) (ports.Listener, error) {
	f.logger.Debug("creating TLS listener",
		ports.LogAttribute{Key: "bind", Value: bindAddress},
		ports.LogAttribute{Key: "port", Value: port})

	ln, err := f.delegate.Listen(ctx, bindAddress, port)
	if err != nil {
		f.logger.Warn(fmt.Sprintf("failed to create TLS listener on %s:%d - %T: %v", bindAddress, port, err, err))
		return nil, err
	}
	return &diagnosticListener{Listener: ln, logger: f.logger, metrics: f.metrics}, nil
}

// diagnosticListener attaches a handshake observer to every accepted
// connection and otherwise passes the delegate's results through unchanged.
type diagnosticListener struct {
	ports.Listener
	logger  ports.Logger
	metrics MetricsReporter
}

func (l *diagnosticListener) Accept() (ports.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	attachObserver(conn, l.logger, l.metrics)
	return conn, nil
}

// attachObserver registers the one-shot handshake-completion log callback.
// The connection guarantees exactly-once delivery on the goroutine that
// drives the handshake.
func attachObserver(conn ports.Conn, logger ports.Logger, metrics MetricsReporter) {
	conn.OnHandshakeComplete(func(info ports.HandshakeInfo) {
		metrics.RecordHandshakeComplete(info.Protocol)

		var sb strings.Builder
		sb.WriteString("handshake completed:\n")
		fmt.Fprintf(&sb, "  Protocol   : %s\n", info.Protocol)
		fmt.Fprintf(&sb, "  Cipher     : %s\n", info.CipherSuite)
		fmt.Fprintf(&sb, "  Peer host  : %s\n", info.PeerHost)
		fmt.Fprintf(&sb, "  Peer port  : %d\n", info.PeerPort)
		if info.PeerVerified && len(info.PeerChain) > 0 {
			fmt.Fprintf(&sb, "  Peer cert  : %s\n", domain.NewCertificateRecord(info.PeerChain[0]).Subject)
		} else {
			sb.WriteString("  Peer cert  : UNVERIFIED\n")
		}
		logger.Info(sb.String())
	})
}

func renderProfile(p ports.ConnProfile) string {
	var sb strings.Builder
	sb.WriteString("TLS socket configuration:\n")
	fmt.Fprintf(&sb, "  Enabled protocols : %s\n", strings.Join(p.Protocols, ", "))
	fmt.Fprintf(&sb, "  Enabled ciphers   : %s\n", strings.Join(p.CipherSuites, ", "))
	fmt.Fprintf(&sb, "  Client auth       : %s\n", p.ClientAuth)
	if p.ServerName != "" {
		fmt.Fprintf(&sb, "  SNI server name   : %s\n", p.ServerName)
	}
	return sb.String()
}
