package services

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"strings"

	"github.com/sufield/tlsdiag/internal/core/ports"
)

// DiagnosticIdentitySelector wraps an IdentitySelector and logs alias
// resolution outcomes. Its single most important job is flagging the absence
// of a usable identity, the most common handshake misconfiguration, at
// warning severity while still surfacing it as a normal empty result.
type DiagnosticIdentitySelector struct {
	delegate ports.IdentitySelector
	logger   ports.Logger
	metrics  MetricsReporter
}

// NewDiagnosticIdentitySelector wraps delegate. Nil logger or metrics fall
// back to the no-op implementations.
func NewDiagnosticIdentitySelector(delegate ports.IdentitySelector, logger ports.Logger, metrics MetricsReporter) *DiagnosticIdentitySelector {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &DiagnosticIdentitySelector{delegate: delegate, logger: logger, metrics: metrics}
}

// ListAliases delegates and logs the returned alias set, or "none".
func (s *DiagnosticIdentitySelector) ListAliases(role ports.PeerRole, keyType string, issuers []pkix.Name) []string {
	aliases := s.delegate.ListAliases(role, keyType, issuers)
	if s.logger.Enabled(ports.LogLevelDebug) {
		rendered := "none"
		if len(aliases) > 0 {
			rendered = strings.Join(aliases, ", ")
		}
		s.logger.Debug(fmt.Sprintf("%s aliases for keyType=%s: %s", role, keyType, rendered))
	}
	return aliases
}

// ChooseAlias delegates. An empty result is logged at warning severity with
// the requested key types and issuer constraint, because handshake
// authentication is likely to fail without a local identity; it is still
// returned as a normal empty result, never an error.
func (s *DiagnosticIdentitySelector) ChooseAlias(role ports.PeerRole, keyTypes []string, issuers []pkix.Name, hint string) string {
	alias := s.delegate.ChooseAlias(role, keyTypes, issuers, hint)
	if alias == "" {
		s.metrics.RecordSelectionMiss(role.String())
		s.logger.Warn(fmt.Sprintf(
			"no %s alias found for keyTypes=%s, issuers=%s; %s certificate authentication may fail",
			role, renderKeyTypes(keyTypes), renderIssuers(issuers), role))
		return alias
	}
	s.logger.Debug(fmt.Sprintf("chose %s alias: %s", role, alias))
	return alias
}

// CertificateChainFor delegates and logs the chain length, or a warning when
// nothing is registered under the alias.
func (s *DiagnosticIdentitySelector) CertificateChainFor(alias string) []*x509.Certificate {
	chain := s.delegate.CertificateChainFor(alias)
	if chain == nil {
		s.logger.Warn("no certificate chain found for alias", ports.LogAttribute{Key: "alias", Value: alias})
		return nil
	}
	s.logger.Debug("certificate chain resolved",
		ports.LogAttribute{Key: "alias", Value: alias},
		ports.LogAttribute{Key: "chain_length", Value: len(chain)})
	return chain
}

// PrivateKeyFor delegates and logs the key algorithm, or a warning when
// nothing is registered under the alias.
func (s *DiagnosticIdentitySelector) PrivateKeyFor(alias string) crypto.Signer {
	key := s.delegate.PrivateKeyFor(alias)
	if key == nil {
		s.logger.Warn("no private key found for alias", ports.LogAttribute{Key: "alias", Value: alias})
		return nil
	}
	s.logger.Debug("private key resolved",
		ports.LogAttribute{Key: "alias", Value: alias},
		ports.LogAttribute{Key: "algorithm", Value: keyAlgorithm(key)})
	return key
}

func renderKeyTypes(keyTypes []string) string {
	if len(keyTypes) == 0 {
		return "any"
	}
	return strings.Join(keyTypes, ", ")
}

func renderIssuers(issuers []pkix.Name) string {
	if len(issuers) == 0 {
		return "any"
	}
	names := make([]string, len(issuers))
	for i := range issuers {
		names[i] = issuers[i].String()
	}
	return strings.Join(names, ", ")
}

func keyAlgorithm(key crypto.Signer) string {
	return fmt.Sprintf("%T", key.Public())
}
