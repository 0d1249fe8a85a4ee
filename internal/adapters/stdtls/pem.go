package stdtls

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/sufield/tlsdiag/internal/core/domain"
)

// LoadTrustAnchors reads a PEM file of CA certificates into a trust anchor
// set.
func LoadTrustAnchors(path string) (*domain.TrustAnchorSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trust anchors: %w", err)
	}
	certs, err := ParseCertificatesPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parsing trust anchors from %s: %w", path, err)
	}
	return domain.NewTrustAnchorSet(certs)
}

// LoadIdentityBundle reads a PEM certificate chain and matching PEM private
// key into an identity bundle registered under alias.
func LoadIdentityBundle(alias, certPath, keyPath string) (*domain.IdentityBundle, error) {
	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("loading key pair: %w", err)
	}

	chain := make([]*x509.Certificate, 0, len(pair.Certificate))
	for i, der := range pair.Certificate {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate %d from %s: %w", i, certPath, err)
		}
		chain = append(chain, cert)
	}

	signer, ok := pair.PrivateKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("private key in %s does not implement crypto.Signer", keyPath)
	}
	return domain.NewIdentityBundle(alias, chain, signer)
}

// ParseCertificatesPEM parses every CERTIFICATE block in data.
func ParseCertificatesPEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found")
	}
	return certs, nil
}
