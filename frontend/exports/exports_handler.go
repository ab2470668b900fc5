package exports

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessioncontext "wmsadmin/frontend/shared/context"
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
)

func ExportsPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		runs, err := listRecentExports(r.Context(), db, 20)
		if err != nil {
			slog.Error("list export runs failed", slog.Any("err", err))
			http.Error(w, "failed to load exports", http.StatusInternalServerError)
			return
		}
		data := PageData{
			TopNav: nav.BuildTopNavData(session),
			Status: r.URL.Query().Get("status"),
			Error:  r.URL.Query().Get("error"),
			Runs:   runs,
		}
		for _, t := range importer.Targets() {
			data.Targets = append(data.Targets, TargetLink{ID: t.ID, Label: t.Label})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ExportsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render exports page", http.StatusInternalServerError)
			return
		}
	}
}

// TargetExportCSVHandler streams all rows of one import target as CSV.
func TargetExportCSVHandler(db *sqlite.DB, client backend.Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := importer.Lookup(chi.URLParam(r, "target"))
		if err != nil {
			http.Error(w, "unknown export target", http.StatusNotFound)
			return
		}

		// buffered so a backend failure can still become a 500
		var buf bytes.Buffer
		count, err := writeTargetCSV(r.Context(), client, &buf, target)
		if err != nil {
			slog.Error("export csv failed", slog.String("target", target.ID), slog.Any("err", err))
			http.Error(w, "failed to export csv", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+target.ID+".csv")
		_, _ = w.Write(buf.Bytes())

		if err := recordExportRun(r.Context(), db, sessioncontext.UserIDFromContext(r.Context()), exportTypeTarget(target.ID), count); err != nil {
			slog.Error("record export run failed", slog.String("type", exportTypeTarget(target.ID)), slog.Any("err", err))
		}
	}
}
