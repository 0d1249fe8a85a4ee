// Package stdtls implements the tlsdiag capability interfaces on top of the
// standard library's crypto/tls engine. Its types are the delegates the
// diagnostic decorators wrap: a chain verifier over a trust anchor set, an
// identity selector over registered bundles, and connection factories whose
// connections carry the one-shot handshake-completion mechanism.
package stdtls

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"runtime"
	"sync"
	"time"

	errs "github.com/sufield/tlsdiag/internal/core/errors"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// ClientAuthMode controls how a server-side context treats client
// certificates.
type ClientAuthMode int

const (
	// NoClientAuth means client certificates are neither requested nor
	// verified.
	NoClientAuth ClientAuthMode = iota
	// RequestClientAuth requests a client certificate and verifies one if
	// presented, but tolerates its absence.
	RequestClientAuth
	// RequireClientAuth requests a client certificate and fails the
	// handshake when none is presented or verification rejects it.
	RequireClientAuth
)

// String returns the rendering used in socket configuration logs.
func (m ClientAuthMode) String() string {
	switch m {
	case RequestClientAuth:
		return "want"
	case RequireClientAuth:
		return "need"
	default:
		return "none"
	}
}

// Context implements ports.SecurityContext over crypto/tls. A Context is
// created uninitialized for a protocol name and becomes usable once Init
// installs a verifier and selector. All methods are safe for concurrent use;
// many simultaneous handshakes may flow through one context.
type Context struct {
	protocol   string
	minVersion uint16
	maxVersion uint16
	clientAuth ClientAuthMode
	serverName string

	mu          sync.RWMutex
	initialized bool
	verifier    ports.TrustVerifier
	selector    ports.IdentitySelector

	sessions *sessionCache
}

// ContextOption configures a Context at creation time.
type ContextOption func(*Context)

// WithClientAuth sets the client-certificate requirement for server sockets
// created from this context.
func WithClientAuth(mode ClientAuthMode) ContextOption {
	return func(c *Context) { c.clientAuth = mode }
}

// WithServerName overrides the SNI name sent on every outbound connection
// from this context. Without it, the dialed host is used.
func WithServerName(name string) ContextOption {
	return func(c *Context) { c.serverName = name }
}

// NewContext creates an uninitialized context for the given protocol name.
// Recognized names are "TLS" (engine defaults), "TLSv1.2" and "TLSv1.3"
// (pinned to that version).
func NewContext(protocol string, opts ...ContextOption) (*Context, error) {
	min, max, err := protocolVersions(protocol)
	if err != nil {
		return nil, err
	}
	c := &Context{
		protocol:   protocol,
		minVersion: min,
		maxVersion: max,
		sessions:   newSessionCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Protocol implements ports.SecurityContext.
func (c *Context) Protocol() string { return c.protocol }

// Provider implements ports.SecurityContext.
func (c *Context) Provider() string {
	return "crypto/tls (" + runtime.Version() + ")"
}

// Initialized implements ports.SecurityContext.
func (c *Context) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Init installs the verifier and selector this context uses for every
// subsequent handshake. The verifier is mandatory; a nil selector means no
// local identity is presented. Calling Init again replaces both capabilities
// for connections created afterwards.
func (c *Context) Init(verifier ports.TrustVerifier, selector ports.IdentitySelector) error {
	if verifier == nil {
		return fmt.Errorf("trust verifier cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifier = verifier
	c.selector = selector
	c.initialized = true
	return nil
}

// ClientFactory implements ports.SecurityContext. The factory fails with
// ErrNotInitialized when used before Init.
func (c *Context) ClientFactory() ports.Dialer {
	return &dialer{ctx: c}
}

// ServerFactory implements ports.SecurityContext. The factory fails with
// ErrNotInitialized when used before Init.
func (c *Context) ServerFactory() ports.ListenerFactory {
	return &listenerFactory{ctx: c}
}

// Sessions implements ports.SecurityContext.
func (c *Context) Sessions() ports.SessionCache { return c.sessions }

// DefaultProtocols implements ports.SecurityContext.
func (c *Context) DefaultProtocols() []string {
	return versionNames(c.minVersion, c.maxVersion)
}

// SupportedProtocols implements ports.SecurityContext.
func (c *Context) SupportedProtocols() []string {
	return versionNames(tls.VersionTLS10, tls.VersionTLS13)
}

// DefaultCipherSuites implements ports.SecurityContext.
func (c *Context) DefaultCipherSuites() []string {
	suites := tls.CipherSuites()
	names := make([]string, len(suites))
	for i, s := range suites {
		names[i] = s.Name
	}
	return names
}

// ClientCertificateExpiry returns the earliest leaf NotAfter among the
// aliases the selector can present as a client, and false when no client
// identity is configured.
func (c *Context) ClientCertificateExpiry() (time.Time, bool) {
	c.mu.RLock()
	selector := c.selector
	c.mu.RUnlock()
	if selector == nil {
		return time.Time{}, false
	}

	var earliest time.Time
	found := false
	for _, alias := range selector.ListAliases(ports.RoleClient, "", nil) {
		chain := selector.CertificateChainFor(alias)
		if len(chain) == 0 {
			continue
		}
		if !found || chain[0].NotAfter.Before(earliest) {
			earliest = chain[0].NotAfter
			found = true
		}
	}
	return earliest, found
}

// ClientConfig exposes the crypto/tls client configuration for serverName,
// with verification and selection delegated to the installed capabilities.
// A WithServerName override takes precedence over the argument.
// It exists for integrations (such as gRPC credentials) that consume a
// *tls.Config directly; connections made with it bypass the session cache
// and the handshake observer, which live on the connection type.
func (c *Context) ClientConfig(serverName string) (*tls.Config, error) {
	return c.clientConfig(serverName)
}

// capabilities returns the installed verifier and selector, or an error when
// the context has not been initialized.
func (c *Context) capabilities() (ports.TrustVerifier, ports.IdentitySelector, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.initialized {
		return nil, nil, errs.ErrNotInitialized
	}
	return c.verifier, c.selector, nil
}

// clientConfig builds the crypto/tls configuration for an outbound
// connection to serverName. Trust verification is delegated to the installed
// verifier through VerifyPeerCertificate; identity selection is delegated to
// the installed selector through GetClientCertificate.
func (c *Context) clientConfig(serverName string) (*tls.Config, error) {
	verifier, selector, err := c.capabilities()
	if err != nil {
		return nil, err
	}
	if c.serverName != "" {
		serverName = c.serverName
	}

	cfg := &tls.Config{
		MinVersion: c.minVersion,
		MaxVersion: c.maxVersion,
		ServerName: serverName,

		// Engine verification is bypassed so the decision flows through
		// the installed TrustVerifier; the verifier still performs full
		// chain validation against its anchors.
		InsecureSkipVerify: true,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			chain, err := parseChain(rawCerts)
			if err != nil {
				return err
			}
			return verifier.CheckTrusted(chain, chainAuthType(chain), ports.RoleServer)
		},
	}

	if selector != nil {
		cfg.GetClientCertificate = func(cri *tls.CertificateRequestInfo) (*tls.Certificate, error) {
			alias := selector.ChooseAlias(ports.RoleClient, nil, acceptableIssuers(cri.AcceptableCAs), serverName)
			if alias == "" {
				// Presenting no certificate is a valid outcome; the
				// server decides whether to tolerate it.
				return &tls.Certificate{}, nil
			}
			cert, ok := certificateFor(selector, alias)
			if !ok {
				return &tls.Certificate{}, nil
			}
			return cert, nil
		}
	}
	return cfg, nil
}

// serverConfig builds the crypto/tls configuration for a listening socket.
func (c *Context) serverConfig() (*tls.Config, error) {
	verifier, selector, err := c.capabilities()
	if err != nil {
		return nil, err
	}
	if selector == nil {
		return nil, fmt.Errorf("server socket requires an identity selector")
	}
	mode := c.clientAuth

	cfg := &tls.Config{
		MinVersion: c.minVersion,
		MaxVersion: c.maxVersion,
		GetCertificate: func(chi *tls.ClientHelloInfo) (*tls.Certificate, error) {
			alias := selector.ChooseAlias(ports.RoleServer, nil, nil, chi.ServerName)
			if alias == "" {
				return nil, fmt.Errorf("no server identity available")
			}
			cert, ok := certificateFor(selector, alias)
			if !ok {
				return nil, fmt.Errorf("no certificate material for alias %q", alias)
			}
			return cert, nil
		},
	}

	switch mode {
	case RequireClientAuth:
		cfg.ClientAuth = tls.RequireAnyClientCert
	case RequestClientAuth:
		cfg.ClientAuth = tls.RequestClientCert
	default:
		cfg.ClientAuth = tls.NoClientCert
	}

	if mode != NoClientAuth {
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				// Only reachable in request mode; absence is tolerated.
				return nil
			}
			chain, err := parseChain(rawCerts)
			if err != nil {
				return err
			}
			return verifier.CheckTrusted(chain, chainAuthType(chain), ports.RoleClient)
		}
	}
	return cfg, nil
}

// profile describes the configuration a connection was created with.
func (c *Context) profile(serverName string) ports.ConnProfile {
	if serverName != "" && c.serverName != "" {
		serverName = c.serverName
	}
	return ports.ConnProfile{
		Protocols:    versionNames(c.minVersion, c.maxVersion),
		CipherSuites: c.DefaultCipherSuites(),
		ClientAuth:   c.clientAuth.String(),
		ServerName:   serverName,
	}
}

func parseChain(rawCerts [][]byte) ([]*x509.Certificate, error) {
	chain := make([]*x509.Certificate, len(rawCerts))
	for i, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing peer certificate %d: %w", i, err)
		}
		chain[i] = cert
	}
	return chain, nil
}

// chainAuthType names the leaf's key algorithm, the closest analogue to the
// authType string the verification capability expects.
func chainAuthType(chain []*x509.Certificate) string {
	if len(chain) == 0 {
		return "UNKNOWN"
	}
	return chain[0].PublicKeyAlgorithm.String()
}

func acceptableIssuers(acceptableCAs [][]byte) []pkix.Name {
	var issuers []pkix.Name
	for _, der := range acceptableCAs {
		var rdns pkix.RDNSequence
		if _, err := asn1.Unmarshal(der, &rdns); err != nil {
			continue
		}
		var name pkix.Name
		name.FillFromRDNSequence(&rdns)
		issuers = append(issuers, name)
	}
	return issuers
}

func certificateFor(selector ports.IdentitySelector, alias string) (*tls.Certificate, bool) {
	chain := selector.CertificateChainFor(alias)
	key := selector.PrivateKeyFor(alias)
	if len(chain) == 0 || key == nil {
		return nil, false
	}
	der := make([][]byte, len(chain))
	for i, cert := range chain {
		der[i] = cert.Raw
	}
	return &tls.Certificate{Certificate: der, PrivateKey: key, Leaf: chain[0]}, true
}

func protocolVersions(protocol string) (uint16, uint16, error) {
	switch protocol {
	case "TLS", "":
		return tls.VersionTLS12, tls.VersionTLS13, nil
	case "TLSv1.2":
		return tls.VersionTLS12, tls.VersionTLS12, nil
	case "TLSv1.3":
		return tls.VersionTLS13, tls.VersionTLS13, nil
	default:
		return 0, 0, fmt.Errorf("unsupported protocol %q", protocol)
	}
}

func versionName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLSv1.0"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS13:
		return "TLSv1.3"
	default:
		return fmt.Sprintf("0x%04x", version)
	}
}

func versionNames(min, max uint16) []string {
	all := []uint16{tls.VersionTLS10, tls.VersionTLS11, tls.VersionTLS12, tls.VersionTLS13}
	var names []string
	for _, v := range all {
		if v >= min && v <= max {
			names = append(names, versionName(v))
		}
	}
	return names
}
