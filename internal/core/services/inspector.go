package services

import (
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/sufield/tlsdiag/internal/core/domain"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// MostRecentSession scans the cache and returns the record with the greatest
// creation timestamp, or nil when the cache is empty. The scan is O(cache
// size) and performs no mutation. Enumeration tolerates concurrent inserts
// and evictions: the result is a recent, possibly stale snapshot.
func MostRecentSession(cache ports.SessionCache) *domain.SessionRecord {
	if cache == nil {
		return nil
	}
	var newest *domain.SessionRecord
	for _, id := range cache.IDs() {
		session := cache.Resolve(id)
		if session == nil {
			continue
		}
		if newest == nil || session.CreatedAt.After(newest.CreatedAt) {
			newest = session
		}
	}
	return newest
}

// DiagnosticReport renders a session as a human-readable diagnostic block.
// Certificate validity is recomputed against the current clock on every
// call: a certificate valid at handshake time may already be expired by the
// time the report is requested, and the report must say so.
//
// The function never fails; missing or unverifiable data degrades to
// explicit markers in the output.
func DiagnosticReport(session *domain.SessionRecord) string {
	return DiagnosticReportAt(session, time.Now())
}

// DiagnosticReportAt renders the report as of the given instant. It is the
// time-parameterized form of DiagnosticReport; validity checks use now
// instead of the wall clock.
func DiagnosticReportAt(session *domain.SessionRecord, now time.Time) string {
	if session == nil {
		return "No sessions in cache\n"
	}

	var sb strings.Builder
	sb.WriteString("TLS session diagnostics:\n")
	fmt.Fprintf(&sb, "  Protocol     : %s\n", session.Protocol)
	fmt.Fprintf(&sb, "  Cipher suite : %s\n", session.CipherSuite)
	fmt.Fprintf(&sb, "  Peer host    : %s\n", session.PeerHost)
	fmt.Fprintf(&sb, "  Peer port    : %d\n", session.PeerPort)
	fmt.Fprintf(&sb, "  Created      : %s\n", session.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "  Last accessed: %s\n", session.LastAccessedAt.Format(time.RFC3339))

	if len(session.LocalChain) > 0 {
		fmt.Fprintf(&sb, "  Local certs  : %d\n", len(session.LocalChain))
		renderReportChain(&sb, session.LocalChain, now)
	} else {
		sb.WriteString("  Local certs  : none\n")
	}

	if session.PeerVerified && len(session.PeerChain) > 0 {
		fmt.Fprintf(&sb, "  Peer certs   : %d\n", len(session.PeerChain))
		renderReportChain(&sb, session.PeerChain, now)
	} else {
		sb.WriteString("  Peer certs   : UNVERIFIED\n")
	}

	return sb.String()
}

func renderReportChain(sb *strings.Builder, chain []*x509.Certificate, now time.Time) {
	for i, cert := range chain {
		rec := domain.NewCertificateRecord(cert)
		fmt.Fprintf(sb, "    [%d] Subject : %s\n", i, rec.Subject)
		fmt.Fprintf(sb, "         Valid   : %s -> %s\n",
			rec.NotBefore.Format(time.RFC3339), rec.NotAfter.Format(time.RFC3339))
		if err := rec.CheckValidityAt(now); err != nil {
			fmt.Fprintf(sb, "         Status  : *** %s: %v ***\n", rec.ValidityAt(now), err)
		} else {
			fmt.Fprintf(sb, "         Status  : %s\n", rec.ValidityAt(now))
		}
	}
}
