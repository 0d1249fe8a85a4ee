package cli

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCertPEM(t *testing.T, name, commonName string, notBefore, notAfter time.Time) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(7),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		DNSNames:              []string{"example.test"},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestInspectCommand_Text(t *testing.T) {
	path := writeCertPEM(t, "valid.pem", "inspect-valid",
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))

	out, err := executeCommand(t, "inspect", path)
	require.NoError(t, err)

	assert.Contains(t, out, "File       : "+path)
	assert.Contains(t, out, "Subject    : CN=inspect-valid")
	assert.Contains(t, out, "Self-Signed: true")
	assert.Contains(t, out, "Status     : VALID")
	assert.NotContains(t, out, "***")
}

func TestInspectCommand_ExpiredFlagged(t *testing.T) {
	path := writeCertPEM(t, "expired.pem", "inspect-expired",
		time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))

	out, err := executeCommand(t, "inspect", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Status     : *** EXPIRED ***")
}

func TestInspectCommand_JSON(t *testing.T) {
	path := writeCertPEM(t, "valid.pem", "inspect-json",
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))

	out, err := executeCommand(t, "inspect", path, "--format", "json")
	require.NoError(t, err)

	var records []certificateReport
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, path, records[0].File)
	assert.Equal(t, "CN=inspect-json", records[0].Subject)
	assert.Equal(t, "VALID", records[0].Status)
	assert.True(t, records[0].SelfSigned)
	assert.Contains(t, records[0].SubjectAltNames, "DNS:example.test")
}

func TestInspectCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "inspect", filepath.Join(t.TempDir(), "nope.pem"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestInspectCommand_NotPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

	_, err := executeCommand(t, "inspect", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "parsing")
}

func TestSplitTarget(t *testing.T) {
	host, port, err := splitTarget("example.org:8443")
	require.NoError(t, err)
	assert.Equal(t, "example.org", host)
	assert.Equal(t, 8443, port)

	_, _, err = splitTarget("example.org")
	assert.ErrorContains(t, err, "host:port")

	_, _, err = splitTarget("example.org:notaport")
	assert.ErrorContains(t, err, "invalid port")

	_, _, err = splitTarget("example.org:0")
	assert.ErrorContains(t, err, "invalid port")
}
