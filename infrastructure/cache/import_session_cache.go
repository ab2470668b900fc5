package cache

import (
	"errors"
	"sync"
	"time"

	"wmsadmin/infrastructure/importer"
)

var (
	ErrImportSessionNotFound = errors.New("import session expired")
	ErrImportInProgress      = errors.New("this import is already being uploaded")
	ErrImportAlreadyUploaded = errors.New("this import was already uploaded")
)

type importEntry struct {
	session   *importer.Session
	expiresAt time.Time
	uploading bool
}

// ImportSessionCache holds parsed imports between preview and upload.
// Stored sessions are never mutated: readers get copies, and an upload works
// on its own copy that replaces the stored one on Release.
type ImportSessionCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]importEntry
}

func NewImportSessionCache(ttl time.Duration) *ImportSessionCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ImportSessionCache{ttl: ttl, now: time.Now, sessions: make(map[string]importEntry)}
}

func (c *ImportSessionCache) Put(s *importer.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.ID] = importEntry{session: s, expiresAt: c.now().Add(c.ttl)}
}

// live returns the unexpired entry for id and refreshes its expiry.
// Callers hold c.mu.
func (c *ImportSessionCache) live(id string) (importEntry, bool) {
	e, ok := c.sessions[id]
	if !ok {
		return e, false
	}
	if c.now().After(e.expiresAt) && !e.uploading {
		delete(c.sessions, id)
		return e, false
	}
	e.expiresAt = c.now().Add(c.ttl)
	c.sessions[id] = e
	return e, true
}

// Get returns a copy of the session and whether an upload is running on it.
func (c *ImportSessionCache) Get(id string) (*importer.Session, bool) {
	s, _, ok := c.Snapshot(id)
	return s, ok
}

// Snapshot is Get plus the uploading flag, read under the same lock.
func (c *ImportSessionCache) Snapshot(id string) (sess *importer.Session, uploading, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(id)
	if !ok {
		return nil, false, false
	}
	return e.session.Clone(), e.uploading, true
}

// Claim reserves the session for one upload and returns the copy to upload.
// Only one caller wins until Release; a session with a result cannot be
// claimed again.
func (c *ImportSessionCache) Claim(id string) (*importer.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(id)
	switch {
	case !ok:
		return nil, ErrImportSessionNotFound
	case e.uploading:
		return nil, ErrImportInProgress
	case e.session.Result != nil:
		return nil, ErrImportAlreadyUploaded
	}
	e.uploading = true
	c.sessions[e.session.ID] = e
	return e.session.Clone(), nil
}

// Release stores the uploaded copy and ends the claim. A session without a
// result (the upload never started) can be claimed again.
func (c *ImportSessionCache) Release(s *importer.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[s.ID]
	if !ok {
		return
	}
	e.session = s
	e.uploading = false
	e.expiresAt = c.now().Add(c.ttl)
	c.sessions[s.ID] = e
}

func (c *ImportSessionCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
}

// Sweep drops expired sessions and returns how many were removed. Sessions
// being uploaded are kept until released.
func (c *ImportSessionCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for id, e := range c.sessions {
		if now.After(e.expiresAt) && !e.uploading {
			delete(c.sessions, id)
			n++
		}
	}
	return n
}

func (c *ImportSessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
