package rbac

import (
	"testing"

	"wmsadmin/infrastructure/cache"
)

func TestMatchPathWildcardSegments(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		ok      bool
	}{
		{pattern: "/tasker/import/*/upload", path: "/tasker/import/0b1c/upload", ok: true},
		{pattern: "/tasker/pallets/*/label", path: "/tasker/pallets/PAL-10/label", ok: true},
		{pattern: "/tasker/exports/*", path: "/tasker/exports/products.csv", ok: true},
		{pattern: "/tasker/import/templates/*", path: "/tasker/import/templates/serials.csv", ok: true},
		{pattern: "/tasker/admin/users", path: "/tasker/admin/users", ok: true},
		{pattern: "/tasker/admin/users", path: "/tasker/admin/users/1", ok: false},
		{pattern: "/tasker/tables/*/delete", path: "/tasker/tables/serials", ok: false},
		{pattern: "/tasker/exports/*", path: "/tasker/exports", ok: true},
		{pattern: "/tasker/exports/*", path: "/tasker/exportsx/a", ok: false},
		{pattern: "/tasker/import/*", path: "/tasker/import/abc/upload", ok: true},
	}

	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.ok {
			t.Fatalf("pattern=%s path=%s expected=%v got=%v", tc.pattern, tc.path, tc.ok, got)
		}
	}
}

func TestValidateResourceAccessByRole(t *testing.T) {
	c := cache.NewRbacRolesCache()
	r := New(c)
	r.Add(RoleOperator, "TABLES_VIEW", "get", "/tasker/tables/*")
	r.Add(RoleOperator, "TABLES_DELETE", "post", "/tasker/tables/*/delete")
	r.Add(RoleViewer, "TABLES_VIEW", "get", "/tasker/tables/*")

	viewer := c.GetRolesAndResources([]string{RoleViewer})
	if !ValidateResourceAccess(viewer, "/tasker/tables/serials", "GET") {
		t.Fatalf("viewer should read tables")
	}
	if ValidateResourceAccess(viewer, "/tasker/tables/serials/delete", "POST") {
		t.Fatalf("viewer must not delete rows")
	}
	operator := c.GetRolesAndResources([]string{RoleOperator})
	if !ValidateResourceAccess(operator, "/tasker/tables/serials/delete", "POST") {
		t.Fatalf("operator should delete rows")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{"admin", "operator", "viewer"} {
		if !ValidRole(role) {
			t.Fatalf("%s should be valid", role)
		}
	}
	if ValidRole("scanner") || ValidRole("") {
		t.Fatalf("unknown roles must be rejected")
	}
}

func TestGrantAndMatchReturnCode(t *testing.T) {
	c := cache.NewRbacRolesCache()
	r := New(c)
	r.Grant("LAYOUT_VIEW", "GET", "/tasker/layout", Staff...)

	for _, role := range Staff {
		res, ok := Match(c.GetRolesAndResources([]string{role}), "/tasker/layout", "get")
		if !ok || res.UserResourceCode != "LAYOUT_VIEW" {
			t.Fatalf("%s: expected LAYOUT_VIEW, got %+v ok=%v", role, res, ok)
		}
	}
	if _, ok := Match(c.GetRolesAndResources([]string{RoleViewer}), "/tasker/layout", "POST"); ok {
		t.Fatal("method must match")
	}
	if got := c.CodesByRole()[RoleAdmin]; len(got) != 0 {
		t.Fatalf("admin was not granted anything explicitly, got %v", got)
	}
}
