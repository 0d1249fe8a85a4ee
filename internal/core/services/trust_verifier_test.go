package services_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/tlsdiag/internal/adapters/logging"
	"github.com/sufield/tlsdiag/internal/core/ports"
	"github.com/sufield/tlsdiag/internal/core/services"
)

// selfSignedCert issues a self-signed certificate for test chains.
func selfSignedCert(t *testing.T, commonName string, notBefore, notAfter time.Time) *x509.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

// fakeVerifier returns canned results and records its inputs.
type fakeVerifier struct {
	err     error
	issuers []*x509.Certificate

	gotChain    []*x509.Certificate
	gotAuthType string
	gotRole     ports.PeerRole
	calls       int
}

func (v *fakeVerifier) CheckTrusted(chain []*x509.Certificate, authType string, role ports.PeerRole) error {
	v.gotChain = chain
	v.gotAuthType = authType
	v.gotRole = role
	v.calls++
	return v.err
}

func (v *fakeVerifier) AcceptedIssuers() []*x509.Certificate { return v.issuers }

// recordingMetrics counts observations for assertions.
type recordingMetrics struct {
	mu            sync.Mutex
	verifications map[string]int // "role/trusted"
	selectionMiss map[string]int
	connects      map[bool]int
	handshakes    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		verifications: map[string]int{},
		selectionMiss: map[string]int{},
		connects:      map[bool]int{},
		handshakes:    map[string]int{},
	}
}

func (m *recordingMetrics) RecordVerification(role string, trusted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications[fmt.Sprintf("%s/%t", role, trusted)]++
}

func (m *recordingMetrics) RecordSelectionMiss(role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectionMiss[role]++
}

func (m *recordingMetrics) RecordConnect(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects[success]++
}

func (m *recordingMetrics) RecordHandshakeComplete(protocol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handshakes[protocol]++
}

func TestDiagnosticTrustVerifier_Success(t *testing.T) {
	t.Parallel()

	now := time.Now()
	chain := []*x509.Certificate{selfSignedCert(t, "server", now.Add(-time.Hour), now.Add(time.Hour))}
	delegate := &fakeVerifier{}
	logger := logging.NewCapture()
	metrics := newRecordingMetrics()

	v := services.NewDiagnosticTrustVerifier(delegate, logger, metrics)
	err := v.CheckTrusted(chain, "ECDSA", ports.RoleServer)

	require.NoError(t, err)
	assert.Equal(t, 1, delegate.calls)
	assert.Equal(t, chain, delegate.gotChain)
	assert.Equal(t, "ECDSA", delegate.gotAuthType)
	assert.Equal(t, ports.RoleServer, delegate.gotRole)

	// Chain rendered before the outcome, at debug level.
	debugged := logger.Messages(ports.LogLevelDebug)
	require.Len(t, debugged, 2)
	assert.Contains(t, debugged[0], "CN=server")
	assert.Contains(t, debugged[1], "trusted successfully")
	assert.Empty(t, logger.Messages(ports.LogLevelWarn))
	assert.Equal(t, 1, metrics.verifications["server/true"])
}

func TestDiagnosticTrustVerifier_FailureReturnsIdenticalError(t *testing.T) {
	t.Parallel()

	now := time.Now()
	chain := []*x509.Certificate{selfSignedCert(t, "server", now.Add(-time.Hour), now.Add(time.Hour))}
	sentinel := errors.New("unknown authority")
	delegate := &fakeVerifier{err: sentinel}
	logger := logging.NewCapture()

	v := services.NewDiagnosticTrustVerifier(delegate, logger, nil)
	err := v.CheckTrusted(chain, "ECDSA", ports.RoleServer)

	// The exact error value, not a wrapped copy.
	assert.Same(t, sentinel, err) //nolint:errorlint // identity is the contract under test
	warns := logger.Messages(ports.LogLevelWarn)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "REJECTED")
	assert.Contains(t, warns[0], "unknown authority")
}

func TestDiagnosticTrustVerifier_ForensicBlock(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("expired leaf flagged", func(t *testing.T) {
		t.Parallel()
		chain := []*x509.Certificate{selfSignedCert(t, "old", now.Add(-2*time.Hour), now.Add(-time.Hour))}
		logger := logging.NewCapture()
		v := services.NewDiagnosticTrustVerifier(&fakeVerifier{err: errors.New("expired")}, logger, nil)

		_ = v.CheckTrusted(chain, "ECDSA", ports.RoleServer)
		assert.True(t, logger.Contains("** EXPIRED OR NOT YET VALID"))
	})

	t.Run("single-certificate chain flagged", func(t *testing.T) {
		t.Parallel()
		chain := []*x509.Certificate{selfSignedCert(t, "lonely", now.Add(-time.Hour), now.Add(time.Hour))}
		logger := logging.NewCapture()
		v := services.NewDiagnosticTrustVerifier(&fakeVerifier{err: errors.New("no path")}, logger, nil)

		_ = v.CheckTrusted(chain, "ECDSA", ports.RoleServer)
		assert.True(t, logger.Contains("POSSIBLE ISSUE"))
		assert.True(t, logger.Contains("SELF-SIGNED"))
	})

	t.Run("cause chain unwrapped with bound", func(t *testing.T) {
		t.Parallel()
		err := errors.New("root cause")
		for i := 0; i < 8; i++ {
			err = fmt.Errorf("layer %d: %w", i, err)
		}
		chain := []*x509.Certificate{selfSignedCert(t, "deep", now.Add(-time.Hour), now.Add(time.Hour))}
		logger := logging.NewCapture()
		v := services.NewDiagnosticTrustVerifier(&fakeVerifier{err: err}, logger, nil)

		_ = v.CheckTrusted(chain, "ECDSA", ports.RoleServer)
		assert.True(t, logger.Contains("Caused by [0]"))
		assert.True(t, logger.Contains("Caused by [4]"))
		assert.False(t, logger.Contains("Caused by [5]"))
	})

	t.Run("empty chain still produces block", func(t *testing.T) {
		t.Parallel()
		logger := logging.NewCapture()
		v := services.NewDiagnosticTrustVerifier(&fakeVerifier{err: errors.New("no certs")}, logger, nil)

		err := v.CheckTrusted(nil, "ECDSA", ports.RoleClient)
		require.Error(t, err)
		warns := logger.Messages(ports.LogLevelWarn)
		require.Len(t, warns, 1)
		assert.Contains(t, warns[0], "client certificate REJECTED")
	})
}

// warnDisabledLogger reports warnings as disabled and fails the test if one
// is emitted anyway, proving the failure block is never rendered for a sink
// that would drop it.
type warnDisabledLogger struct {
	t *testing.T
}

func (l warnDisabledLogger) Enabled(level ports.LogLevel) bool {
	return level != ports.LogLevelWarn
}

func (l warnDisabledLogger) Debug(string, ...ports.LogAttribute) {}

func (l warnDisabledLogger) Info(string, ...ports.LogAttribute) {}

func (l warnDisabledLogger) Warn(message string, _ ...ports.LogAttribute) {
	l.t.Errorf("warning emitted while warn level disabled: %q", message)
}

func TestDiagnosticTrustVerifier_WarnDisabledSkipsForensics(t *testing.T) {
	t.Parallel()

	now := time.Now()
	chain := []*x509.Certificate{selfSignedCert(t, "quiet", now.Add(-time.Hour), now.Add(time.Hour))}
	sentinel := errors.New("untrusted")
	delegate := &fakeVerifier{err: sentinel}

	v := services.NewDiagnosticTrustVerifier(delegate, warnDisabledLogger{t: t}, nil)
	err := v.CheckTrusted(chain, "ECDSA", ports.RoleServer)

	// Rejection still flows through unchanged.
	assert.Same(t, sentinel, err) //nolint:errorlint // identity is the contract under test
	assert.Equal(t, 1, delegate.calls)
}

func TestDiagnosticTrustVerifier_AcceptedIssuers(t *testing.T) {
	t.Parallel()

	now := time.Now()
	issuers := []*x509.Certificate{selfSignedCert(t, "root", now.Add(-time.Hour), now.Add(time.Hour))}
	delegate := &fakeVerifier{issuers: issuers}
	logger := logging.NewCapture()

	v := services.NewDiagnosticTrustVerifier(delegate, logger, nil)
	got := v.AcceptedIssuers()

	// Same slice, no copy.
	assert.Equal(t, issuers, got)
	// Only the count is logged, never the issuer contents.
	assert.True(t, logger.Contains("accepted issuers"))
	assert.False(t, logger.Contains("CN=root"))
}

func TestDiagnosticTrustVerifier_NilLoggerDefaults(t *testing.T) {
	t.Parallel()

	delegate := &fakeVerifier{}
	v := services.NewDiagnosticTrustVerifier(delegate, nil, nil)
	assert.NoError(t, v.CheckTrusted(nil, "ECDSA", ports.RoleServer))
	assert.Equal(t, 1, delegate.calls)
}
