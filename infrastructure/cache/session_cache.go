package cache

import (
	"sync"

	"wmsadmin/models"
)

// UserSessionCache keeps live sessions by token in front of the sessions
// table. Misses fall back to the database, so evicting is always safe.
type UserSessionCache struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewUserSessionCache() *UserSessionCache {
	return &UserSessionCache{sessions: make(map[string]models.Session)}
}

func (c *UserSessionCache) AddSession(s models.Session) {
	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
}

func (c *UserSessionCache) FindSessionBySessionToken(token string) (models.Session, bool) {
	c.mu.RLock()
	s, ok := c.sessions[token]
	c.mu.RUnlock()
	return s, ok
}

func (c *UserSessionCache) DeleteSessionBySessionToken(token string) {
	c.mu.Lock()
	delete(c.sessions, token)
	c.mu.Unlock()
}

// DeleteSessionsByUserID evicts every cached session of a user so the next
// request reloads it, role included, from the database.
func (c *UserSessionCache) DeleteSessionsByUserID(userID int64) int {
	return c.deleteWhere(func(s models.Session) bool { return s.UserID == userID })
}

// SweepExpired drops sessions past their expiry and reports how many went.
func (c *UserSessionCache) SweepExpired() int {
	return c.deleteWhere(models.Session.Expired)
}

func (c *UserSessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *UserSessionCache) deleteWhere(match func(models.Session) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for token, s := range c.sessions {
		if match(s) {
			delete(c.sessions, token)
			n++
		}
	}
	return n
}
