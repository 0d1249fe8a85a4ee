package stdtls

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"

	"github.com/sufield/tlsdiag/internal/core/domain"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// StaticSelector is an IdentitySelector over a fixed set of identity
// bundles, keyed by alias. It is the delegate the diagnostic selector wraps
// in the common case.
//
// Selection does not consider certificate validity: an expired bundle is
// still selected and presented, and the peer's verifier is what rejects it.
// That mirrors how key managers behave and is what makes expiry failures
// observable in the first place.
type StaticSelector struct {
	aliases []string
	bundles map[string]*domain.IdentityBundle
}

var _ ports.IdentitySelector = (*StaticSelector)(nil)

// NewStaticSelector creates a selector over the given bundles. Alias order
// is preserved for selection priority.
func NewStaticSelector(bundles ...*domain.IdentityBundle) *StaticSelector {
	s := &StaticSelector{bundles: make(map[string]*domain.IdentityBundle, len(bundles))}
	for _, b := range bundles {
		if _, exists := s.bundles[b.Alias()]; exists {
			continue
		}
		s.aliases = append(s.aliases, b.Alias())
		s.bundles[b.Alias()] = b
	}
	return s
}

// ListAliases returns every alias matching the key type and issuer
// constraint, in registration order.
func (s *StaticSelector) ListAliases(role ports.PeerRole, keyType string, issuers []pkix.Name) []string {
	var matched []string
	for _, alias := range s.aliases {
		if s.matches(s.bundles[alias], []string{keyType}, issuers) {
			matched = append(matched, alias)
		}
	}
	return matched
}

// ChooseAlias returns the first registered alias satisfying the constraints,
// or "" when none does.
func (s *StaticSelector) ChooseAlias(role ports.PeerRole, keyTypes []string, issuers []pkix.Name, hint string) string {
	for _, alias := range s.aliases {
		if s.matches(s.bundles[alias], keyTypes, issuers) {
			return alias
		}
	}
	return ""
}

// CertificateChainFor returns the chain registered under alias, or nil.
func (s *StaticSelector) CertificateChainFor(alias string) []*x509.Certificate {
	b, ok := s.bundles[alias]
	if !ok {
		return nil
	}
	return b.Chain()
}

// PrivateKeyFor returns the key registered under alias, or nil.
func (s *StaticSelector) PrivateKeyFor(alias string) crypto.Signer {
	b, ok := s.bundles[alias]
	if !ok {
		return nil
	}
	return b.PrivateKey()
}

func (s *StaticSelector) matches(b *domain.IdentityBundle, keyTypes []string, issuers []pkix.Name) bool {
	if !matchesKeyType(b, keyTypes) {
		return false
	}
	if len(issuers) == 0 {
		return true
	}
	leafIssuer := b.Leaf().Issuer.String()
	for _, issuer := range issuers {
		if issuer.String() == leafIssuer {
			return true
		}
	}
	return false
}

func matchesKeyType(b *domain.IdentityBundle, keyTypes []string) bool {
	any := true
	for _, kt := range keyTypes {
		if kt == "" {
			continue
		}
		any = false
		if kt == b.KeyAlgorithm() {
			return true
		}
	}
	return any
}
