package stdtls

import (
	"crypto/x509"

	"github.com/sufield/tlsdiag/internal/core/domain"
	errs "github.com/sufield/tlsdiag/internal/core/errors"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// StandardVerifier is a TrustVerifier that validates chains against a fixed
// trust anchor set using crypto/x509 path building. It is the delegate the
// diagnostic verifier wraps in the common case.
type StandardVerifier struct {
	anchors *domain.TrustAnchorSet
	roots   *x509.CertPool
}

var _ ports.TrustVerifier = (*StandardVerifier)(nil)

// NewStandardVerifier creates a verifier trusting exactly the given anchors.
func NewStandardVerifier(anchors *domain.TrustAnchorSet) *StandardVerifier {
	return &StandardVerifier{anchors: anchors, roots: anchors.CertPool()}
}

// CheckTrusted validates the chain, leaf first, against the anchor set.
// Rejections are reported as *errors.VerificationError wrapping the
// underlying x509 error.
func (v *StandardVerifier) CheckTrusted(chain []*x509.Certificate, authType string, role ports.PeerRole) error {
	if len(chain) == 0 {
		return &errs.VerificationError{Reason: "empty certificate chain"}
	}

	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}

	usage := x509.ExtKeyUsageServerAuth
	if role == ports.RoleClient {
		usage = x509.ExtKeyUsageClientAuth
	}

	_, err := chain[0].Verify(x509.VerifyOptions{
		Roots:         v.roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{usage},
	})
	if err != nil {
		return &errs.VerificationError{Reason: "chain validation failed", Err: err}
	}
	return nil
}

// AcceptedIssuers returns the anchor certificates. Ownership of the returned
// slice transfers to the caller.
func (v *StandardVerifier) AcceptedIssuers() []*x509.Certificate {
	return v.anchors.Certificates()
}
