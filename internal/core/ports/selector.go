package ports

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
)

// IdentitySelector is the local-identity-selection capability: it resolves
// which configured identity, if any, should be presented during a handshake.
//
// The absence of a usable alias is a valid outcome, not an error: ChooseAlias
// returns the empty string and the lookup methods return nil. Callers treat
// that as "present no identity".
type IdentitySelector interface {
	// ListAliases returns every alias usable for the given role, key type
	// and issuer constraint. An empty issuer list means any issuer.
	ListAliases(role PeerRole, keyType string, issuers []pkix.Name) []string

	// ChooseAlias picks the alias to present for the given role, acceptable
	// key types and issuer constraint. hint carries transport context such
	// as the remote address. Returns "" when no identity qualifies.
	ChooseAlias(role PeerRole, keyTypes []string, issuers []pkix.Name, hint string) string

	// CertificateChainFor returns the chain registered under alias, leaf
	// first, or nil when the alias is unknown.
	CertificateChainFor(alias string) []*x509.Certificate

	// PrivateKeyFor returns the private key registered under alias, or nil
	// when the alias is unknown.
	PrivateKeyFor(alias string) crypto.Signer
}
