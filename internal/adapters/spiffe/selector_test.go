package spiffe_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/spiffe/go-spiffe/v2/svid/x509svid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/tlsdiag/internal/adapters/spiffe"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

const workloadID = "spiffe://example.org/workload"

// testSVID builds an X.509 SVID with a URI SAN carrying the SPIFFE ID.
func testSVID(t *testing.T) *x509svid.SVID {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	uri, err := url.Parse(workloadID)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(7),
		Subject:      pkix.Name{CommonName: "workload"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		URIs:         []*url.URL{uri},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &x509svid.SVID{
		ID:           spiffeid.RequireFromString(workloadID),
		Certificates: []*x509.Certificate{cert},
		PrivateKey:   key,
	}
}

func TestSVIDSelector(t *testing.T) {
	t.Parallel()

	svid := testSVID(t)
	s := spiffe.NewSVIDSelector(svid)

	t.Run("alias is the SPIFFE ID", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{workloadID}, s.ListAliases(ports.RoleClient, "", nil))
		assert.Equal(t, workloadID, s.ChooseAlias(ports.RoleClient, nil, nil, ""))
	})

	t.Run("key type constraint", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, workloadID, s.ChooseAlias(ports.RoleClient, []string{"ECDSA"}, nil, ""))
		assert.Equal(t, "", s.ChooseAlias(ports.RoleClient, []string{"RSA"}, nil, ""))
	})

	t.Run("chain and key resolve by alias", func(t *testing.T) {
		t.Parallel()
		chain := s.CertificateChainFor(workloadID)
		require.Len(t, chain, 1)
		assert.True(t, chain[0].Equal(svid.Certificates[0]))
		assert.Equal(t, svid.PrivateKey, s.PrivateKeyFor(workloadID))
	})

	t.Run("unknown alias resolves to nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, s.CertificateChainFor("spiffe://example.org/other"))
		assert.Nil(t, s.PrivateKeyFor("spiffe://example.org/other"))
	})

	t.Run("returned chain is a copy", func(t *testing.T) {
		t.Parallel()
		chain := s.CertificateChainFor(workloadID)
		chain[0] = nil
		assert.NotNil(t, s.CertificateChainFor(workloadID)[0])
	})
}

func TestTrustAnchorsFromBundle(t *testing.T) {
	t.Parallel()

	svid := testSVID(t)
	td := spiffeid.RequireTrustDomainFromString("example.org")
	bundle := x509bundle.FromX509Authorities(td, svid.Certificates)

	set, err := spiffe.TrustAnchorsFromBundle(bundle)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestTrustAnchorsFromBundle_Empty(t *testing.T) {
	t.Parallel()

	td := spiffeid.RequireTrustDomainFromString("example.org")
	_, err := spiffe.TrustAnchorsFromBundle(x509bundle.New(td))
	assert.Error(t, err)
}
