package cache

import (
	"slices"
	"sort"
	"sync"
)

// Resource is one grant: role may call Method on Path, named by a code the
// views use to decide which links and buttons to show.
type Resource struct {
	UserResourceCode string
	Path             string
	Method           string
	Role             string
}

// RbacRolesCache stores the grants of each role. Routes register once at
// startup; after that it is read on every request.
type RbacRolesCache struct {
	mu     sync.RWMutex
	byRole map[string][]Resource
	codes  map[string]struct{}
}

func NewRbacRolesCache() *RbacRolesCache {
	return &RbacRolesCache{
		byRole: make(map[string][]Resource),
		codes:  make(map[string]struct{}),
	}
}

// Add records r for role. Registering the same grant twice is a no-op.
func (c *RbacRolesCache) Add(role string, r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[r.UserResourceCode] = struct{}{}
	if slices.Contains(c.byRole[role], r) {
		return
	}
	c.byRole[role] = append(c.byRole[role], r)
}

// GetRolesAndResources returns the grants of every listed role.
func (c *RbacRolesCache) GetRolesAndResources(roles []string) []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Resource
	for i, role := range roles {
		if slices.Contains(roles[:i], role) {
			continue
		}
		out = append(out, c.byRole[role]...)
	}
	return out
}

// GetAllRouteNames is the permission map handed to admins.
func (c *RbacRolesCache) GetAllRouteNames() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.codes))
	for code := range c.codes {
		out[code] = 1
	}
	return out
}

// CodesByRole lists the distinct codes granted to each role, sorted.
func (c *RbacRolesCache) CodesByRole() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.byRole))
	for role, grants := range c.byRole {
		codes := make([]string, 0, len(grants))
		for _, g := range grants {
			codes = append(codes, g.UserResourceCode)
		}
		sort.Strings(codes)
		out[role] = slices.Compact(codes)
	}
	return out
}
