package domain

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"time"
)

// IdentityBundle is the local identity presented during a handshake: an
// ordered certificate chain (leaf first) and the matching private key,
// attributed to one alias. The bundle is owned by whoever supplied it; the
// diagnostic layer only reads it.
type IdentityBundle struct {
	alias string
	chain []*x509.Certificate
	key   crypto.Signer
}

// NewIdentityBundle creates a bundle after validating its shape. The chain
// must be non-empty and ordered leaf first; the key must be present.
func NewIdentityBundle(alias string, chain []*x509.Certificate, key crypto.Signer) (*IdentityBundle, error) {
	if alias == "" {
		return nil, fmt.Errorf("identity alias cannot be empty")
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("certificate chain cannot be empty")
	}
	for i, cert := range chain {
		if cert == nil {
			return nil, fmt.Errorf("certificate chain entry %d is nil", i)
		}
	}
	if key == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	return &IdentityBundle{alias: alias, chain: chain, key: key}, nil
}

// Alias returns the alias this identity is registered under.
func (b *IdentityBundle) Alias() string { return b.alias }

// Chain returns the certificate chain, leaf first. The returned slice is a
// copy so callers cannot mutate the bundle.
func (b *IdentityBundle) Chain() []*x509.Certificate {
	chain := make([]*x509.Certificate, len(b.chain))
	copy(chain, b.chain)
	return chain
}

// Leaf returns the leaf certificate.
func (b *IdentityBundle) Leaf() *x509.Certificate { return b.chain[0] }

// PrivateKey returns the private key matching the leaf certificate.
func (b *IdentityBundle) PrivateKey() crypto.Signer { return b.key }

// KeyAlgorithm returns the public key algorithm of the leaf certificate.
func (b *IdentityBundle) KeyAlgorithm() string {
	return b.chain[0].PublicKeyAlgorithm.String()
}

// ExpiresAt returns the leaf certificate's NotAfter instant.
func (b *IdentityBundle) ExpiresAt() time.Time { return b.chain[0].NotAfter }

// ValidityAt checks the leaf certificate's validity window against the given
// instant. The check is recomputed per call.
func (b *IdentityBundle) ValidityAt(now time.Time) ValidityStatus {
	return NewCertificateRecord(b.chain[0]).ValidityAt(now)
}
