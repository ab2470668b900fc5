package tables

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	sessioncontext "wmsadmin/frontend/shared/context"
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/cache"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
)

const deletePermission = "TABLES_DELETE"

func TablePageQueryHandler(tc *cache.TableCache, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		target, err := importer.Lookup(chi.URLParam(r, "target"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		rows, err := LoadRows(r.Context(), tc, store, target)
		if err != nil {
			slog.Error("load table failed", slog.String("table", target.Table), slog.Any("err", err))
			http.Error(w, "failed to load table", http.StatusInternalServerError)
			return
		}

		cols := target.ColumnKeys()
		data := PageData{
			TopNav:    nav.BuildTopNavData(session),
			Status:    r.URL.Query().Get("status"),
			Error:     r.URL.Query().Get("error"),
			Target:    target,
			Columns:   cols,
			CanDelete: sessioncontext.Can(r.Context(), deletePermission),
		}
		for _, t := range importer.Targets() {
			data.Tabs = append(data.Tabs, TargetTab{ID: t.ID, Label: t.Label, Active: t.ID == target.ID})
		}
		for _, row := range rows {
			data.Rows = append(data.Rows, RowView{ID: importer.FormatValue(row["id"]), Cells: importer.RowFields(row, cols)})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := TablePage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render table page", http.StatusInternalServerError)
			return
		}
	}
}

func TableDeleteCommandHandler(db *sqlite.DB, auditSvc *audit.Service, tc *cache.TableCache, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		target, err := importer.Lookup(chi.URLParam(r, "target"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		back := "/tasker/tables/" + url.PathEscape(target.ID)
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, back+"?error="+url.QueryEscape("invalid form"), http.StatusSeeOther)
			return
		}

		ids := make([]int64, 0, len(r.Form["id"]))
		for _, raw := range r.Form["id"] {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Redirect(w, r, back+"?error="+url.QueryEscape("invalid row id"), http.StatusSeeOther)
				return
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			http.Redirect(w, r, back+"?error="+url.QueryEscape("select rows to delete"), http.StatusSeeOther)
			return
		}

		deleted, err := DeleteRows(r.Context(), db, auditSvc, tc, store, session.UserID, target, ids)
		if err != nil {
			slog.Error("delete rows failed", slog.String("table", target.Table), slog.Any("err", err))
			if deleted == 0 {
				http.Redirect(w, r, back+"?error="+url.QueryEscape("delete failed"), http.StatusSeeOther)
				return
			}
		}
		http.Redirect(w, r, back+"?status="+url.QueryEscape(fmt.Sprintf("%d rows deleted", deleted)), http.StatusSeeOther)
	}
}
