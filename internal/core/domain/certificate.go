// Package domain contains the core data model for TLS diagnostics.
package domain

import (
	"crypto/x509"
	"fmt"
	"strings"
	"time"
)

// ValidityStatus is the result of checking a certificate validity window
// against a specific instant.
type ValidityStatus int

const (
	// ValidityValid means the instant falls inside the validity window.
	ValidityValid ValidityStatus = iota
	// ValidityExpired means the instant is after NotAfter.
	ValidityExpired
	// ValidityNotYetValid means the instant is before NotBefore.
	ValidityNotYetValid
)

// String returns the report rendering of the status.
func (s ValidityStatus) String() string {
	switch s {
	case ValidityValid:
		return "VALID"
	case ValidityExpired:
		return "EXPIRED"
	case ValidityNotYetValid:
		return "NOT YET VALID"
	default:
		return "UNKNOWN"
	}
}

// CertificateRecord is a snapshot of the identifying fields of a single
// certificate, derived on demand for logging and reporting. It is never
// cached beyond the log or report call that produced it.
type CertificateRecord struct {
	Subject            string
	Issuer             string
	SerialNumber       string
	NotBefore          time.Time
	NotAfter           time.Time
	SignatureAlgorithm string
	SubjectAltNames    []string
}

// NewCertificateRecord derives a record from a parsed certificate.
func NewCertificateRecord(cert *x509.Certificate) CertificateRecord {
	if cert == nil {
		return CertificateRecord{Subject: "unavailable", Issuer: "unavailable"}
	}

	var sans []string
	for _, name := range cert.DNSNames {
		sans = append(sans, "DNS:"+name)
	}
	for _, ip := range cert.IPAddresses {
		sans = append(sans, "IP:"+ip.String())
	}
	for _, uri := range cert.URIs {
		sans = append(sans, "URI:"+uri.String())
	}
	for _, email := range cert.EmailAddresses {
		sans = append(sans, "EMAIL:"+email)
	}

	return CertificateRecord{
		Subject:            cert.Subject.String(),
		Issuer:             cert.Issuer.String(),
		SerialNumber:       cert.SerialNumber.Text(16),
		NotBefore:          cert.NotBefore,
		NotAfter:           cert.NotAfter,
		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
		SubjectAltNames:    sans,
	}
}

// ValidityAt checks the record's validity window against the given instant.
// The check is recomputed on every call so a caller always sees the current
// status, not the status at handshake time.
func (r CertificateRecord) ValidityAt(now time.Time) ValidityStatus {
	if now.Before(r.NotBefore) {
		return ValidityNotYetValid
	}
	if now.After(r.NotAfter) {
		return ValidityExpired
	}
	return ValidityValid
}

// CheckValidityAt returns a descriptive error when the window does not
// contain the given instant, mirroring the status returned by ValidityAt.
func (r CertificateRecord) CheckValidityAt(now time.Time) error {
	switch r.ValidityAt(now) {
	case ValidityExpired:
		return fmt.Errorf("certificate expired at %s", r.NotAfter.Format(time.RFC3339))
	case ValidityNotYetValid:
		return fmt.Errorf("certificate not valid until %s", r.NotBefore.Format(time.RFC3339))
	default:
		return nil
	}
}

// SelfSigned reports whether the record's subject and issuer are identical.
// This is an advisory heuristic for diagnostics only and must never be used
// to alter an accept or reject decision.
func (r CertificateRecord) SelfSigned() bool {
	return r.Subject != "" && r.Subject == r.Issuer
}

// RenderChain formats a certificate chain, leaf first, as a multi-line block
// suitable for diagnostic logging.
func RenderChain(chain []*x509.Certificate) string {
	var sb strings.Builder
	for i, cert := range chain {
		rec := NewCertificateRecord(cert)
		fmt.Fprintf(&sb, "  [%d] Subject : %s\n", i, rec.Subject)
		fmt.Fprintf(&sb, "       Issuer  : %s\n", rec.Issuer)
		fmt.Fprintf(&sb, "       Serial  : %s\n", rec.SerialNumber)
		fmt.Fprintf(&sb, "       Valid   : %s -> %s\n",
			rec.NotBefore.Format(time.RFC3339), rec.NotAfter.Format(time.RFC3339))
		fmt.Fprintf(&sb, "       SigAlg  : %s\n", rec.SignatureAlgorithm)
		if len(rec.SubjectAltNames) > 0 {
			fmt.Fprintf(&sb, "       SANs    : %s\n", strings.Join(rec.SubjectAltNames, ", "))
		}
	}
	return sb.String()
}
