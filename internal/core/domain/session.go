package domain

import (
	"crypto/x509"
	"time"
)

// SessionRecord is the negotiated state of one completed handshake as stored
// in a session cache. The cache that produced the record owns it; the
// diagnostic layer reads the fields and never writes them.
type SessionRecord struct {
	// ID identifies the session inside its cache.
	ID string
	// Protocol is the negotiated protocol version, e.g. "TLSv1.3".
	Protocol string
	// CipherSuite is the negotiated cipher suite name.
	CipherSuite string
	// PeerHost and PeerPort identify the remote endpoint.
	PeerHost string
	PeerPort int
	// CreatedAt is when the handshake completed.
	CreatedAt time.Time
	// LastAccessedAt is when the cache last resolved this session.
	LastAccessedAt time.Time
	// LocalChain is the certificate chain this side presented, leaf first.
	// Nil when no local certificate was sent.
	LocalChain []*x509.Certificate
	// PeerChain is the chain the peer presented, leaf first. Nil when the
	// peer presented nothing or the chain was not verifiable.
	PeerChain []*x509.Certificate
	// PeerVerified reports whether PeerChain passed trust verification.
	PeerVerified bool
}
