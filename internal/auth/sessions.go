package auth

import (
	"sync"

	"github.com/emersonmendes/warzone-4us/internal/domain"
)

// SessionCache maps credential identity to its cached session. Entries have
// no TTL; they live until a caller observing an auth-expired classification
// invalidates them.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionCache() *SessionCache {
	return &SessionCache{sessions: make(map[string]domain.Session)}
}

func (c *SessionCache) Get(username string) (domain.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[username]
	return s, ok
}

func (c *SessionCache) Put(s domain.Session) {
	c.mu.Lock()
	c.sessions[s.Username] = s
	c.mu.Unlock()
}

func (c *SessionCache) Invalidate(username string) {
	c.mu.Lock()
	delete(c.sessions, username)
	c.mu.Unlock()
}
