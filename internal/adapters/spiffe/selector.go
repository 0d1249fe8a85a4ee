// Package spiffe adapts SPIFFE workload identities to the tlsdiag capability
// interfaces, so services that receive their identity as an X.509 SVID can
// run it through the same diagnostic wrapping as file-based identities.
package spiffe

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"github.com/spiffe/go-spiffe/v2/svid/x509svid"

	"github.com/sufield/tlsdiag/internal/core/domain"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// SVIDSelector is an IdentitySelector over a single X.509 SVID. The SPIFFE
// ID string serves as the alias.
type SVIDSelector struct {
	svid *x509svid.SVID
}

var _ ports.IdentitySelector = (*SVIDSelector)(nil)

// NewSVIDSelector creates a selector presenting the given SVID.
func NewSVIDSelector(svid *x509svid.SVID) *SVIDSelector {
	return &SVIDSelector{svid: svid}
}

// ListAliases returns the SVID's SPIFFE ID when it matches the constraints.
func (s *SVIDSelector) ListAliases(role ports.PeerRole, keyType string, issuers []pkix.Name) []string {
	if !s.matches([]string{keyType}, issuers) {
		return nil
	}
	return []string{s.svid.ID.String()}
}

// ChooseAlias returns the SVID's SPIFFE ID when it matches the constraints,
// or "".
func (s *SVIDSelector) ChooseAlias(role ports.PeerRole, keyTypes []string, issuers []pkix.Name, hint string) string {
	if !s.matches(keyTypes, issuers) {
		return ""
	}
	return s.svid.ID.String()
}

// CertificateChainFor returns the SVID chain when alias names this SVID.
func (s *SVIDSelector) CertificateChainFor(alias string) []*x509.Certificate {
	if alias != s.svid.ID.String() {
		return nil
	}
	chain := make([]*x509.Certificate, len(s.svid.Certificates))
	copy(chain, s.svid.Certificates)
	return chain
}

// PrivateKeyFor returns the SVID key when alias names this SVID.
func (s *SVIDSelector) PrivateKeyFor(alias string) crypto.Signer {
	if alias != s.svid.ID.String() {
		return nil
	}
	return s.svid.PrivateKey
}

func (s *SVIDSelector) matches(keyTypes []string, issuers []pkix.Name) bool {
	if len(s.svid.Certificates) == 0 {
		return false
	}
	leaf := s.svid.Certificates[0]

	constrained := false
	for _, kt := range keyTypes {
		if kt == "" {
			continue
		}
		constrained = true
		if kt == leaf.PublicKeyAlgorithm.String() {
			constrained = false
			break
		}
	}
	if constrained {
		return false
	}

	if len(issuers) == 0 {
		return true
	}
	leafIssuer := leaf.Issuer.String()
	for _, issuer := range issuers {
		if issuer.String() == leafIssuer {
			return true
		}
	}
	return false
}

// TrustAnchorsFromBundle converts a SPIFFE trust bundle's X.509 authorities
// into a trust anchor set.
func TrustAnchorsFromBundle(bundle *x509bundle.Bundle) (*domain.TrustAnchorSet, error) {
	return domain.NewTrustAnchorSet(bundle.X509Authorities())
}
