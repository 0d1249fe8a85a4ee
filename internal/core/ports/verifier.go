package ports

import (
	"crypto/x509"
)

// PeerRole identifies which side of the handshake a verified chain or a
// selected identity belongs to.
type PeerRole int

const (
	// RoleClient means the chain or identity belongs to the client side.
	RoleClient PeerRole = iota
	// RoleServer means the chain or identity belongs to the server side.
	RoleServer
)

// String returns the lowercase role name used in log output.
func (r PeerRole) String() string {
	if r == RoleClient {
		return "client"
	}
	return "server"
}

// TrustVerifier is the trust-verification capability. Implementations decide
// whether a presented chain is trusted; the diagnostic layer never makes that
// decision itself.
type TrustVerifier interface {
	// CheckTrusted validates a certificate chain, ordered leaf first, for a
	// peer acting in the given role. authType names the key exchange or key
	// algorithm in use. A nil return means the chain is trusted; a non-nil
	// return (typically *errors.VerificationError) means it was rejected.
	CheckTrusted(chain []*x509.Certificate, authType string, role PeerRole) error

	// AcceptedIssuers returns the trust anchors this verifier accepts as
	// chain roots. Ownership of the returned slice transfers to the caller.
	AcceptedIssuers() []*x509.Certificate
}
