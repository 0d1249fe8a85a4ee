package domain

import (
	"crypto/x509"
	"fmt"
)

// TrustAnchorSet holds the certificates trusted as roots when validating a
// peer's presented chain. The set is owned externally and read-only to the
// diagnostic layer.
type TrustAnchorSet struct {
	anchors []*x509.Certificate
}

// NewTrustAnchorSet creates a set after validating its contents.
func NewTrustAnchorSet(anchors []*x509.Certificate) (*TrustAnchorSet, error) {
	if len(anchors) == 0 {
		return nil, fmt.Errorf("trust anchor set cannot be empty")
	}
	for i, cert := range anchors {
		if cert == nil {
			return nil, fmt.Errorf("trust anchor %d is nil", i)
		}
	}
	copied := make([]*x509.Certificate, len(anchors))
	copy(copied, anchors)
	return &TrustAnchorSet{anchors: copied}, nil
}

// Certificates returns the anchors in order. The returned slice is a copy so
// callers cannot mutate the set.
func (s *TrustAnchorSet) Certificates() []*x509.Certificate {
	anchors := make([]*x509.Certificate, len(s.anchors))
	copy(anchors, s.anchors)
	return anchors
}

// Len returns the number of anchors in the set.
func (s *TrustAnchorSet) Len() int { return len(s.anchors) }

// CertPool builds an x509.CertPool containing every anchor. A fresh pool is
// returned on each call.
func (s *TrustAnchorSet) CertPool() *x509.CertPool {
	pool := x509.NewCertPool()
	for _, cert := range s.anchors {
		pool.AddCert(cert)
	}
	return pool
}
