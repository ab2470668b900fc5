package settings

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	sessioncontext "wmsadmin/frontend/shared/context"
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
	"wmsadmin/models"
)

func ImportSettingsPageHandler(db *sqlite.DB, defaultBatchSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		stored, err := ListImportSettings(r.Context(), db)
		if err != nil {
			slog.Error("list import settings failed", slog.Any("err", err))
			http.Error(w, "failed to load import settings", http.StatusInternalServerError)
			return
		}

		data := PageData{
			TopNav: nav.BuildTopNavData(session),
			Status: r.URL.Query().Get("status"),
			Error:  r.URL.Query().Get("error"),
		}
		for _, t := range importer.Targets() {
			row := TargetSettingRow{
				TargetID:       t.ID,
				Label:          t.Label,
				BatchSize:      defaultBatchSize,
				FallbackPolicy: string(importer.FallbackAssumeNew),
			}
			if s, ok := stored[t.ID]; ok {
				row.BatchSize = s.BatchSize
				row.FallbackPolicy = s.FallbackPolicy
				row.Overridden = true
			}
			data.Targets = append(data.Targets, row)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ImportSettingsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render settings page", http.StatusInternalServerError)
			return
		}
	}
}

func ImportSettingsUpdateHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/tasker/settings/import?error="+url.QueryEscape("invalid form"), http.StatusSeeOther)
			return
		}
		batchSize, err := strconv.Atoi(strings.TrimSpace(r.FormValue("batch_size")))
		if err != nil {
			http.Redirect(w, r, "/tasker/settings/import?error="+url.QueryEscape("batch size must be a number"), http.StatusSeeOther)
			return
		}
		setting := models.ImportSetting{
			TargetID:       strings.TrimSpace(r.FormValue("target_id")),
			BatchSize:      batchSize,
			FallbackPolicy: strings.TrimSpace(r.FormValue("fallback_policy")),
		}
		if err := SaveImportSetting(r.Context(), db, auditSvc, session.UserID, setting); err != nil {
			msg := "save failed"
			if errors.Is(err, ErrInvalidSetting) || errors.Is(err, importer.ErrUnknownTarget) {
				msg = err.Error()
			} else {
				slog.Error("save import setting failed", slog.String("target", setting.TargetID), slog.Any("err", err))
			}
			http.Redirect(w, r, "/tasker/settings/import?error="+url.QueryEscape(msg), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/tasker/settings/import?status="+url.QueryEscape("saved "+setting.TargetID), http.StatusSeeOther)
	}
}
