package ports

import (
	"context"
	"crypto/x509"
	"net"
)

// HandshakeInfo is the negotiated state reported to handshake-completion
// observers. It is produced once per connection, immediately after the
// underlying transport reports handshake success.
type HandshakeInfo struct {
	// Protocol is the negotiated protocol version, e.g. "TLSv1.3".
	Protocol string
	// CipherSuite is the negotiated cipher suite name.
	CipherSuite string
	// PeerHost and PeerPort identify the remote endpoint.
	PeerHost string
	PeerPort int
	// PeerChain is the chain the peer presented, leaf first, or nil.
	PeerChain []*x509.Certificate
	// PeerVerified reports whether the peer's chain passed verification.
	// When false the peer identity must be reported as unverified, never
	// treated as an error.
	PeerVerified bool
}

// ConnProfile describes the security configuration a connection was created
// with, for debug-level logging.
type ConnProfile struct {
	// Protocols lists the enabled protocol versions.
	Protocols []string
	// CipherSuites lists the enabled cipher suite names.
	CipherSuites []string
	// ClientAuth describes the client-authentication requirement.
	ClientAuth string
	// ServerName is the SNI hint, if any.
	ServerName string
}

// Conn is a connection produced by a connection factory. Implementations
// guarantee that every registered handshake-completion observer is invoked
// exactly once, after the transport reports handshake success, on whatever
// goroutine drives the handshake. Observers registered after completion are
// invoked immediately, still exactly once each.
type Conn interface {
	net.Conn

	// Handshake runs the TLS handshake if it has not run yet. The first
	// Read or Write triggers it implicitly; calling Handshake surfaces
	// the outcome eagerly. Verification failures are returned exactly as
	// the installed TrustVerifier produced them.
	Handshake(ctx context.Context) error

	// OnHandshakeComplete registers a one-shot observer for handshake
	// completion. Safe for concurrent use.
	OnHandshakeComplete(fn func(HandshakeInfo))

	// Profile returns the security configuration of this connection.
	Profile() ConnProfile
}

// Dialer is the client connection-establishment capability.
type Dialer interface {
	// DialContext establishes a connection to host:port. On failure it
	// returns a *errors.ConnectError; the returned connection is nil.
	DialContext(ctx context.Context, host string, port int) (Conn, error)
}

// Listener accepts server-side connections. Accepted connections carry the
// same one-shot handshake-completion mechanism as dialed ones.
type Listener interface {
	// Accept waits for the next connection.
	Accept() (Conn, error)
	// Close stops the listener.
	Close() error
	// Addr returns the listener's bound address.
	Addr() net.Addr
}

// ListenerFactory is the server connection-establishment capability.
type ListenerFactory interface {
	// Listen binds a listening socket on bindAddress:port. port 0 selects
	// an ephemeral port. On failure it returns a *errors.ConnectError.
	Listen(ctx context.Context, bindAddress string, port int) (Listener, error)
}
