package stdtls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"strconv"
	"sync"

	errs "github.com/sufield/tlsdiag/internal/core/errors"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// dialer is the client connection factory for a Context. Dialing establishes
// the TCP transport and wraps it in a TLS connection; the handshake itself
// runs lazily on the returned connection, so observers attached after dialing
// still see it.
type dialer struct {
	ctx *Context
}

var _ ports.Dialer = (*dialer)(nil)

// DialContext implements ports.Dialer.
func (d *dialer) DialContext(ctx context.Context, host string, port int) (ports.Conn, error) {
	cfg, err := d.ctx.clientConfig(host)
	if err != nil {
		return nil, &errs.ConnectError{Op: "dial", Host: host, Port: port, Err: err}
	}

	// Capture the identity actually presented so the session record can
	// report local certificates. GetClientCertificate runs at most once
	// per handshake.
	var presented localChainHolder
	if inner := cfg.GetClientCertificate; inner != nil {
		cfg.GetClientCertificate = func(cri *tls.CertificateRequestInfo) (*tls.Certificate, error) {
			cert, err := inner(cri)
			if err == nil && cert != nil {
				presented.set(cert)
			}
			return cert, err
		}
	}

	var nd net.Dialer
	raw, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, &errs.ConnectError{Op: "dial", Host: host, Port: port, Err: err}
	}

	tlsConn := tls.Client(raw, cfg)
	record := func(info ports.HandshakeInfo, state tls.ConnectionState) {
		d.ctx.sessions.add(info, state, presented.chain())
	}
	return newConn(tlsConn, d.ctx.profile(host), host, port, record), nil
}

// localChainHolder remembers the certificate presented during a handshake.
type localChainHolder struct {
	mu   sync.Mutex
	cert *tls.Certificate
}

func (h *localChainHolder) set(cert *tls.Certificate) {
	h.mu.Lock()
	h.cert = cert
	h.mu.Unlock()
}

func (h *localChainHolder) chain() []*x509.Certificate {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cert == nil || len(h.cert.Certificate) == 0 {
		return nil
	}
	chain := make([]*x509.Certificate, 0, len(h.cert.Certificate))
	for _, der := range h.cert.Certificate {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			continue
		}
		chain = append(chain, cert)
	}
	return chain
}

// listenerFactory is the server connection factory for a Context.
type listenerFactory struct {
	ctx *Context
}

var _ ports.ListenerFactory = (*listenerFactory)(nil)

// Listen implements ports.ListenerFactory.
func (f *listenerFactory) Listen(ctx context.Context, bindAddress string, port int) (ports.Listener, error) {
	cfg, err := f.ctx.serverConfig()
	if err != nil {
		return nil, &errs.ConnectError{Op: "listen", Host: bindAddress, Port: port, Err: err}
	}

	var lc net.ListenConfig
	raw, err := lc.Listen(ctx, "tcp", net.JoinHostPort(bindAddress, strconv.Itoa(port)))
	if err != nil {
		return nil, &errs.ConnectError{Op: "listen", Host: bindAddress, Port: port, Err: err}
	}
	return &listener{raw: raw, ctx: f.ctx, cfg: cfg}, nil
}

// listener accepts TCP connections and wraps each in a server-side TLS
// connection carrying the observer mechanism. Server connections do not
// populate the client session cache.
type listener struct {
	raw net.Listener
	ctx *Context
	cfg *tls.Config
}

var _ ports.Listener = (*listener)(nil)

func (l *listener) Accept() (ports.Conn, error) {
	raw, err := l.raw.Accept()
	if err != nil {
		return nil, err
	}

	host, port := remoteEndpoint(raw)
	tlsConn := tls.Server(raw, l.cfg)
	return newConn(tlsConn, l.ctx.profile(""), host, port, nil), nil
}

func (l *listener) Close() error { return l.raw.Close() }

func (l *listener) Addr() net.Addr { return l.raw.Addr() }

func remoteEndpoint(conn net.Conn) (string, int) {
	addr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return conn.RemoteAddr().String(), 0
	}
	return addr.IP.String(), addr.Port
}
