package stdtls

import (
	"context"
	"crypto/tls"
	"sync"

	"github.com/sufield/tlsdiag/internal/core/ports"
)

// conn implements ports.Conn over a *tls.Conn. The handshake runs lazily:
// the first Read or Write drives it through crypto/tls, or a caller runs it
// eagerly via Handshake. Whichever goroutine completes the handshake fires
// the registered observers, each exactly once; observers registered after
// completion fire immediately on the registering goroutine.
type conn struct {
	*tls.Conn
	profile ports.ConnProfile
	host    string
	port    int

	// record, when set, stores the completed session in the owning
	// context's cache. Client connections set it; server connections do
	// not populate the client session cache.
	record func(info ports.HandshakeInfo, state tls.ConnectionState)

	mu        sync.Mutex
	fired     bool
	info      ports.HandshakeInfo
	observers []func(ports.HandshakeInfo)
}

var _ ports.Conn = (*conn)(nil)

func newConn(tlsConn *tls.Conn, profile ports.ConnProfile, host string, port int,
	record func(ports.HandshakeInfo, tls.ConnectionState)) *conn {
	return &conn{Conn: tlsConn, profile: profile, host: host, port: port, record: record}
}

// Handshake implements ports.Conn. Errors from the installed TrustVerifier
// surface here exactly as the verifier produced them.
func (c *conn) Handshake(ctx context.Context) error {
	err := c.Conn.HandshakeContext(ctx)
	if err == nil {
		c.maybeFire()
	}
	return err
}

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	c.maybeFire()
	return n, err
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	c.maybeFire()
	return n, err
}

// OnHandshakeComplete implements ports.Conn.
func (c *conn) OnHandshakeComplete(fn func(ports.HandshakeInfo)) {
	c.mu.Lock()
	if c.fired {
		info := c.info
		c.mu.Unlock()
		fn(info)
		return
	}
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Profile implements ports.Conn.
func (c *conn) Profile() ports.ConnProfile { return c.profile }

// maybeFire delivers the completion notification once the underlying
// transport reports a completed handshake. Exactly one caller wins.
func (c *conn) maybeFire() {
	state := c.Conn.ConnectionState()
	if !state.HandshakeComplete {
		return
	}

	c.mu.Lock()
	if c.fired {
		c.mu.Unlock()
		return
	}
	c.fired = true
	c.info = handshakeInfo(state, c.host, c.port)
	info := c.info
	observers := c.observers
	c.observers = nil
	c.mu.Unlock()

	if c.record != nil {
		c.record(info, state)
	}
	for _, fn := range observers {
		fn(info)
	}
}

func handshakeInfo(state tls.ConnectionState, host string, port int) ports.HandshakeInfo {
	return ports.HandshakeInfo{
		Protocol:     versionName(state.Version),
		CipherSuite:  tls.CipherSuiteName(state.CipherSuite),
		PeerHost:     host,
		PeerPort:     port,
		PeerChain:    state.PeerCertificates,
		PeerVerified: len(state.PeerCertificates) > 0,
	}
}
