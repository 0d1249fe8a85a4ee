package stdtls

import (
	"crypto/tls"
	"crypto/x509"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sufield/tlsdiag/internal/core/domain"
	"github.com/sufield/tlsdiag/internal/core/ports"
)

// sessionCache is the context-owned client session cache. It is the only
// component that mutates session records; readers get copies. Enumeration
// returns a snapshot, so it tolerates concurrent inserts: a session added
// mid-enumeration may or may not appear.
type sessionCache struct {
	mu       sync.RWMutex
	sessions map[string]*domain.SessionRecord
}

var _ ports.SessionCache = (*sessionCache)(nil)

func newSessionCache() *sessionCache {
	return &sessionCache{sessions: make(map[string]*domain.SessionRecord)}
}

// add stores a record for a freshly completed client handshake.
func (c *sessionCache) add(info ports.HandshakeInfo, state tls.ConnectionState, localChain []*x509.Certificate) {
	now := time.Now()
	record := &domain.SessionRecord{
		ID:             uuid.NewString(),
		Protocol:       info.Protocol,
		CipherSuite:    info.CipherSuite,
		PeerHost:       info.PeerHost,
		PeerPort:       info.PeerPort,
		CreatedAt:      now,
		LastAccessedAt: now,
		LocalChain:     localChain,
		PeerChain:      state.PeerCertificates,
		PeerVerified:   info.PeerVerified,
	}

	c.mu.Lock()
	c.sessions[record.ID] = record
	c.mu.Unlock()
}

// IDs implements ports.SessionCache.
func (c *sessionCache) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Resolve implements ports.SessionCache. The cache updates its own
// last-accessed timestamp and returns a copy, so callers can never mutate
// cached state.
func (c *sessionCache) Resolve(id string) *domain.SessionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.sessions[id]
	if !ok {
		return nil
	}
	record.LastAccessedAt = time.Now()
	copied := *record
	return &copied
}
