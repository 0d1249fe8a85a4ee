package services

import (
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sufield/tlsdiag/internal/core/domain"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// causeUnwrapLimit bounds how many nested causes a forensic block renders.
const causeUnwrapLimit = 5

// DiagnosticTrustVerifier wraps a TrustVerifier with chain logging before
// delegation and outcome logging after. The delegate's accept or reject
// decision, including the exact error value, is always returned unchanged;
// the wrapper never swallows, alters or retries a failure.
type DiagnosticTrustVerifier struct {
	delegate ports.TrustVerifier
	logger   ports.Logger
	metrics  MetricsReporter
}

// NewDiagnosticTrustVerifier wraps delegate. A nil logger falls back to the
// no-op logger; a nil metrics reporter falls back to the no-op reporter.
func NewDiagnosticTrustVerifier(delegate ports.TrustVerifier, logger ports.Logger, metrics MetricsReporter) *DiagnosticTrustVerifier {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &DiagnosticTrustVerifier{delegate: delegate, logger: logger, metrics: metrics}
}

// CheckTrusted logs the chain at debug level, delegates, then logs a terse
// success line or a forensic failure block. The delegate's error is
// re-returned as-is.
func (v *DiagnosticTrustVerifier) CheckTrusted(chain []*x509.Certificate, authType string, role ports.PeerRole) error {
	if v.logger.Enabled(ports.LogLevelDebug) {
		v.logger.Debug(fmt.Sprintf("%s certificate chain (authType=%s, depth=%d):\n%s",
			role, authType, len(chain), domain.RenderChain(chain)))
	}

	err := v.delegate.CheckTrusted(chain, authType, role)
	v.metrics.RecordVerification(role.String(), err == nil)
	if err != nil {
		if v.logger.Enabled(ports.LogLevelWarn) {
			v.logger.Warn(forensicBlock(role, chain, authType, err))
		}
		return err
	}

	v.logger.Debug(fmt.Sprintf("%s certificate trusted successfully", role))
	return nil
}

// AcceptedIssuers delegates and logs only the count of returned issuers. The
// delegate's slice is returned unmodified.
func (v *DiagnosticTrustVerifier) AcceptedIssuers() []*x509.Certificate {
	issuers := v.delegate.AcceptedIssuers()
	if v.logger.Enabled(ports.LogLevelDebug) {
		v.logger.Debug("accepted issuers", ports.LogAttribute{Key: "count", Value: len(issuers)})
	}
	return issuers
}

// forensicBlock renders the multi-line failure diagnostics: the delegate's
// stated reason, leaf details, a fresh validity recheck, advisory heuristics
// for short chains and self-signed leaves, and the nested cause chain.
//
// The heuristics are best-effort diagnostics only; they never influence the
// accept or reject decision.
func forensicBlock(role ports.PeerRole, chain []*x509.Certificate, authType string, err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*** %s certificate REJECTED ***\n", role)
	fmt.Fprintf(&sb, "  Auth type : %s\n", authType)
	fmt.Fprintf(&sb, "  Reason    : %v\n", err)

	if len(chain) > 0 {
		leaf := domain.NewCertificateRecord(chain[0])
		fmt.Fprintf(&sb, "  Leaf cert : %s\n", leaf.Subject)

		if vErr := leaf.CheckValidityAt(time.Now()); vErr != nil {
			fmt.Fprintf(&sb, "  ** EXPIRED OR NOT YET VALID: %v\n", vErr)
		}
		if len(chain) == 1 {
			sb.WriteString("  ** POSSIBLE ISSUE: chain has only 1 certificate (self-signed or missing intermediates)\n")
		}
		if leaf.SelfSigned() {
			sb.WriteString("  ** SELF-SIGNED certificate detected\n")
		}
	}

	cause := errors.Unwrap(err)
	for depth := 0; cause != nil && depth < causeUnwrapLimit; depth++ {
		fmt.Fprintf(&sb, "  Caused by [%d]: %T - %v\n", depth, cause, cause)
		cause = errors.Unwrap(cause)
	}

	return sb.String()
}
