package tlsdiag_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/tlsdiag/internal/adapters/logging"
	"github.com/sufield/tlsdiag/pkg/tlsdiag"
)

func selfSigned(t *testing.T) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "smoke"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert, key
}

func TestWrapUninitialized(t *testing.T) {
	t.Parallel()

	cert, key := selfSigned(t)
	anchors, err := tlsdiag.NewTrustAnchorSet([]*x509.Certificate{cert})
	require.NoError(t, err)
	bundle, err := tlsdiag.NewIdentityBundle("smoke", []*x509.Certificate{cert}, key)
	require.NoError(t, err)

	logger := logging.NewCapture()
	facade, err := tlsdiag.WrapUninitialized("TLSv1.3", tlsdiag.WithLogger(logger))
	require.NoError(t, err)
	require.NotNil(t, facade)
	assert.False(t, facade.Inner().Initialized())

	require.NoError(t, facade.Init(
		tlsdiag.NewStandardVerifier(anchors),
		tlsdiag.NewStaticSelector(bundle),
	))
	assert.True(t, facade.Inner().Initialized())
	assert.True(t, logger.Contains("TLS context info"))

	// Empty session cache surfaces as nil, and the report degrades.
	assert.Nil(t, facade.MostRecentSession())
	assert.Equal(t, "No sessions in cache\n", tlsdiag.DiagnosticReport(nil))

	expiry, ok := facade.Inner().ClientCertificateExpiry()
	require.True(t, ok)
	assert.True(t, expiry.Equal(cert.NotAfter))
}

func TestWrapUninitialized_BadProtocol(t *testing.T) {
	t.Parallel()

	_, err := tlsdiag.WrapUninitialized("SSLv3")
	assert.Error(t, err)
}

func TestWrapInitialized(t *testing.T) {
	t.Parallel()

	cert, _ := selfSigned(t)
	anchors, err := tlsdiag.NewTrustAnchorSet([]*x509.Certificate{cert})
	require.NoError(t, err)

	inner, err := tlsdiag.WrapUninitialized("TLS")
	require.NoError(t, err)
	require.NoError(t, inner.Init(tlsdiag.NewStandardVerifier(anchors), nil))

	logger := logging.NewCapture()
	facade := tlsdiag.WrapInitialized(inner.Inner(), tlsdiag.WithLogger(logger))
	require.NotNil(t, facade)
	assert.True(t, logger.Contains("TLS context info"))
	assert.NotNil(t, facade.SocketFactory())
	assert.NotNil(t, facade.ServerSocketFactory())
}

func TestSetDefaultLogger(t *testing.T) {
	// Mutates process-wide state; not parallel.
	capture := logging.NewCapture()
	tlsdiag.SetDefaultLogger(capture)
	defer tlsdiag.SetDefaultLogger(nil)

	facade, err := tlsdiag.WrapUninitialized("TLS")
	require.NoError(t, err)

	cert, _ := selfSigned(t)
	anchors, err := tlsdiag.NewTrustAnchorSet([]*x509.Certificate{cert})
	require.NoError(t, err)
	require.NoError(t, facade.Init(tlsdiag.NewStandardVerifier(anchors), nil))

	assert.True(t, capture.Contains("TLS context info"))
}
