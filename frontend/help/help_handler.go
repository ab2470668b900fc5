package help

import (
	"net/http"

	sessioncontext "wmsadmin/frontend/shared/context"
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/importer"
)

// Sections follow the permission codes the session was granted, so the page
// never describes a screen the reader cannot open.
const (
	importPermission = "IMPORT_VIEW"
	adminPermission  = "ADMIN_USERS_LIST_VIEW"
)

func HelpPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := r.Context()
		data := PageData{
			TopNav:    nav.BuildTopNavData(session),
			IsAdmin:   sessioncontext.Can(ctx, adminPermission),
			CanImport: sessioncontext.Can(ctx, importPermission),
			Targets:   importer.Targets(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HelpPage(data).Render(ctx, w); err != nil {
			http.Error(w, "failed to render help page", http.StatusInternalServerError)
		}
	}
}
