package ports

import (
	"github.com/sufield/tlsdiag/internal/core/domain"
)

// SessionCache is an enumerable collection of cached handshake sessions. The
// cache owns its records and their eviction policy; the diagnostic layer only
// reads through this interface.
//
// Enumeration may race with new sessions being added. Implementations return
// a recent snapshot; a session added mid-enumeration is not guaranteed to
// appear.
type SessionCache interface {
	// IDs returns a snapshot of the identifiers currently in the cache.
	IDs() []string
	// Resolve returns the record for id, or nil when the session has been
	// evicted since enumeration.
	Resolve(id string) *domain.SessionRecord
}
