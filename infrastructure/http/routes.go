package http

import (
	"net/http"

	adminusers "wmsadmin/frontend/adminUsers"
	"wmsadmin/frontend/dataimport"
	exportspage "wmsadmin/frontend/exports"
	"wmsadmin/frontend/help"
	"wmsadmin/frontend/layout"
	"wmsadmin/frontend/login"
	palletlabels "wmsadmin/frontend/pallets/labels"
	"wmsadmin/frontend/settings"
	"wmsadmin/frontend/tables"
	"wmsadmin/infrastructure/rbac"

	"github.com/go-chi/chi/v5"
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/login", login.CreateLoginHandler(s.DB, s.SessionCache, s.UserCache, s.LoginThrottle))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache))
}

// RegisterAdminRoutes registers admin-only routes.
func (s *Server) RegisterAdminRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_LIST_VIEW", http.MethodGet, "/tasker/admin/users")
	r.Get("/admin/users", adminusers.UsersPageQueryHandler(s.DB, s.Audit, s.RbacCache))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_CREATE", http.MethodPost, "/tasker/admin/users")
	r.Post("/admin/users", adminusers.CreateUserCommandHandler(s.DB, s.Audit))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_ROLE_EDIT", http.MethodPost, "/tasker/admin/users/role")
	r.Post("/admin/users/role", adminusers.UpdateUserRoleCommandHandler(s.DB, s.Audit, s.SessionCache, s.UserCache))

	s.Rbac.Add(rbac.RoleAdmin, "SETTINGS_IMPORT_VIEW", http.MethodGet, "/tasker/settings/import")
	r.Get("/settings/import", settings.ImportSettingsPageHandler(s.DB, s.DefaultBatchSize))
	s.Rbac.Add(rbac.RoleAdmin, "SETTINGS_IMPORT_EDIT", http.MethodPost, "/tasker/settings/import")
	r.Post("/settings/import", settings.ImportSettingsUpdateHandler(s.DB, s.Audit))
	return r
}

// RegisterFrontendRoutes registers authenticated routes.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	s.RegisterImportRoutes(r)
	s.RegisterTableRoutes(r)
	s.RegisterExportRoutes(r)

	s.Rbac.Add(rbac.RoleOperator, "PALLET_LABEL_VIEW", http.MethodGet, "/tasker/pallets/*/label")
	r.Get("/pallets/{code}/label", palletlabels.PalletLabelQueryHandler(s.DB))

	s.Rbac.Grant("HELP_VIEW", http.MethodGet, "/tasker/help", rbac.Staff...)
	r.Get("/help", help.HelpPageQueryHandler())
	return r
}

func (s *Server) RegisterImportRoutes(r chi.Router) {
	s.Rbac.Add(rbac.RoleOperator, "IMPORT_VIEW", http.MethodGet, "/tasker/import")
	r.Get("/import", dataimport.ImportPageQueryHandler(s.DB))

	s.Rbac.Add(rbac.RoleOperator, "IMPORT_PREPARE", http.MethodPost, "/tasker/import")
	r.Post("/import", dataimport.ImportCommandHandler(s.Importer, s.ImportSessions))

	s.Rbac.Add(rbac.RoleOperator, "IMPORT_TEMPLATE", http.MethodGet, "/tasker/import/templates/*")
	r.Get("/import/templates/{target}.csv", dataimport.TemplateCSVHandler())

	s.Rbac.Add(rbac.RoleOperator, "IMPORT_PREVIEW", http.MethodGet, "/tasker/import/*")
	r.Get("/import/{sessionID}", dataimport.ImportPreviewQueryHandler(s.ImportSessions))

	s.Rbac.Add(rbac.RoleOperator, "IMPORT_UPLOAD", http.MethodPost, "/tasker/import/*/upload")
	r.Post("/import/{sessionID}/upload", dataimport.ImportUploadCommandHandler(s.Importer, s.ImportSessions))
}

func (s *Server) RegisterTableRoutes(r chi.Router) {
	s.Rbac.Grant("TABLES_VIEW", http.MethodGet, "/tasker/tables/*", rbac.Staff...)
	r.Get("/tables/{target}", tables.TablePageQueryHandler(s.TableCache, s.Backend))

	s.Rbac.Add(rbac.RoleOperator, "TABLES_DELETE", http.MethodPost, "/tasker/tables/*/delete")
	r.Post("/tables/{target}/delete", tables.TableDeleteCommandHandler(s.DB, s.Audit, s.TableCache, s.Backend))

	s.Rbac.Grant("LAYOUT_VIEW", http.MethodGet, "/tasker/layout", rbac.Staff...)
	r.Get("/layout", layout.LayoutPageQueryHandler(s.TableCache, s.Backend))
}

func (s *Server) RegisterExportRoutes(r chi.Router) {
	s.Rbac.Grant("EXPORTS_VIEW", http.MethodGet, "/tasker/exports", rbac.Staff...)
	r.Get("/exports", exportspage.ExportsPageQueryHandler(s.DB))

	s.Rbac.Grant("EXPORT_TARGET", http.MethodGet, "/tasker/exports/*", rbac.Staff...)
	r.Get("/exports/{target}.csv", exportspage.TargetExportCSVHandler(s.DB, s.Backend))
}
