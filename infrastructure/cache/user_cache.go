package cache

import (
	"strings"
	"sync"

	"wmsadmin/models"
)

// UserCache holds the last known user record, indexed by lower-cased
// username and by id. The auth middleware reads the role from here, so
// evicting an entry forces a reload on the next login.
type UserCache struct {
	mu     sync.RWMutex
	byName map[string]models.User
	nameOf map[int64]string
}

func NewUserCache() *UserCache {
	return &UserCache{
		byName: make(map[string]models.User),
		nameOf: make(map[int64]string),
	}
}

func (c *UserCache) Add(username string, user models.User) {
	key := strings.ToLower(username)
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.nameOf[user.ID]; ok && old != key {
		delete(c.byName, old)
	}
	c.byName[key] = user
	c.nameOf[user.ID] = key
}

func (c *UserCache) Get(username string) (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.byName[strings.ToLower(username)]
	return u, ok
}

func (c *UserCache) DeleteByID(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name, ok := c.nameOf[id]; ok {
		delete(c.byName, name)
		delete(c.nameOf, id)
	}
}
