// Package rbac maps roles to the routes they may call.
//
// Admins pass every check in the auth middleware; their grants only name the
// admin screens. Operators import and edit data, viewers only read it.
package rbac

import (
	"slices"
	"strings"

	"wmsadmin/infrastructure/cache"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// Roles lists every assignable role, most privileged first.
var Roles = []string{RoleAdmin, RoleOperator, RoleViewer}

// Staff is every role that needs explicit grants.
var Staff = []string{RoleOperator, RoleViewer}

func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

// Rbac records grants in the roles cache.
type Rbac struct {
	cache *cache.RbacRolesCache
}

func New(c *cache.RbacRolesCache) *Rbac {
	return &Rbac{cache: c}
}

// Add grants one role access to method+path under code. Path segments may be
// "*"; a trailing "*" also covers anything deeper.
func (r *Rbac) Add(role, code, method, path string) {
	if r == nil || r.cache == nil {
		return
	}
	r.cache.Add(role, cache.Resource{
		Role:             role,
		UserResourceCode: code,
		Method:           strings.ToUpper(method),
		Path:             path,
	})
}

// Grant is Add for several roles at once.
func (r *Rbac) Grant(code, method, path string, roles ...string) {
	for _, role := range roles {
		r.Add(role, code, method, path)
	}
}

// Match returns the first resource that allows method on urlPath.
func Match(resources []cache.Resource, urlPath, method string) (cache.Resource, bool) {
	method = strings.ToUpper(method)
	for _, res := range resources {
		if res.Method == method && matchPath(res.Path, urlPath) {
			return res, true
		}
	}
	return cache.Resource{}, false
}

func ValidateResourceAccess(resources []cache.Resource, urlPath, method string) bool {
	_, ok := Match(resources, urlPath, method)
	return ok
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}
	want := segments(pattern)
	got := segments(path)
	for i, seg := range want {
		if seg == "*" && i == len(want)-1 && len(got) >= i {
			return true
		}
		if i >= len(got) || (seg != "*" && seg != got[i]) {
			return false
		}
	}
	return len(want) == len(got)
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
