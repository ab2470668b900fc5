package layout

import (
	"log/slog"
	"net/http"

	sessioncontext "wmsadmin/frontend/shared/context"
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/frontend/tables"
	"wmsadmin/infrastructure/cache"
	"wmsadmin/infrastructure/importer"
)

type PageData struct {
	TopNav nav.TopNavData
	Grid   Grid
}

func LayoutPageQueryHandler(tc *cache.TableCache, store tables.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		target, err := importer.Lookup("inventory_lots")
		if err != nil {
			http.Error(w, "inventory target missing", http.StatusInternalServerError)
			return
		}
		rows, err := tables.LoadRows(r.Context(), tc, store, target)
		if err != nil {
			slog.Error("load inventory lots failed", slog.Any("err", err))
			http.Error(w, "failed to load inventory", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := LayoutPage(PageData{TopNav: nav.BuildTopNavData(session), Grid: BuildGrid(rows)}).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render layout page", http.StatusInternalServerError)
			return
		}
	}
}
