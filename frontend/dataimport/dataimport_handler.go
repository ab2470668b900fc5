package dataimport

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	sessioncontext "wmsadmin/frontend/shared/context"
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/cache"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
)

const maxUploadBytes = 32 << 20

func ImportPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		runs, err := ListRecentRuns(r.Context(), db, 20)
		if err != nil {
			slog.Error("list import runs failed", slog.Any("err", err))
			http.Error(w, "failed to load import history", http.StatusInternalServerError)
			return
		}

		selected := r.URL.Query().Get("target")
		data := PageData{
			TopNav: nav.BuildTopNavData(session),
			Status: r.URL.Query().Get("status"),
			Error:  r.URL.Query().Get("error"),
			Runs:   runs,
		}
		for _, t := range importer.Targets() {
			data.Targets = append(data.Targets, TargetOption{ID: t.ID, Label: t.Label, Selected: t.ID == selected})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ImportPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render import page", http.StatusInternalServerError)
			return
		}
	}
}

// ImportCommandHandler parses pasted text or an uploaded file into a new
// import session and sends the user to its preview.
func ImportCommandHandler(svc *Service, sessions *cache.ImportSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			redirectImportError(w, r, "", "invalid upload")
			return
		}
		targetID := strings.TrimSpace(r.FormValue("target"))
		text := r.FormValue("text")
		sourceName := SourcePaste

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			content, err := importer.ReadFile(header.Filename, file)
			if err != nil {
				redirectImportError(w, r, targetID, err.Error())
				return
			}
			text = content
			sourceName = header.Filename
		}
		if strings.TrimSpace(text) == "" {
			redirectImportError(w, r, targetID, "paste data or choose a file")
			return
		}

		sess, err := svc.Prepare(r.Context(), targetID, text, sourceName)
		if err != nil {
			if errors.Is(err, importer.ErrUnknownTarget) || errors.Is(err, importer.ErrEmptyInput) {
				redirectImportError(w, r, targetID, err.Error())
				return
			}
			slog.Error("prepare import failed", slog.String("target", targetID), slog.Any("err", err))
			redirectImportError(w, r, targetID, "import failed")
			return
		}
		sessions.Put(sess)
		http.Redirect(w, r, "/tasker/import/"+url.PathEscape(sess.ID), http.StatusSeeOther)
	}
}

func ImportPreviewQueryHandler(sessions *cache.ImportSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		sess, uploading, ok := sessions.Snapshot(chi.URLParam(r, "sessionID"))
		if !ok {
			redirectImportError(w, r, "", "import session expired; paste the data again")
			return
		}
		counts := sess.CountByStatus()
		data := PreviewData{
			TopNav:    nav.BuildTopNavData(session),
			Status:    r.URL.Query().Get("status"),
			Error:     r.URL.Query().Get("error"),
			Session:   sess,
			Counts:    counts,
			CanUpload: !uploading && sess.Result == nil && counts[importer.StatusNew] > 0,
		}
		if uploading && data.Status == "" {
			data.Status = "upload in progress; refresh for the result"
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := PreviewPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render import preview", http.StatusInternalServerError)
			return
		}
	}
}

// ImportUploadCommandHandler uploads a previewed session once. A second
// submit while the first is running, or after it finished, is refused.
func ImportUploadCommandHandler(svc *Service, sessions *cache.ImportSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		previewURL := "/tasker/import/" + url.PathEscape(id)
		sess, err := sessions.Claim(id)
		switch {
		case errors.Is(err, cache.ErrImportSessionNotFound):
			redirectImportError(w, r, "", "import session expired; paste the data again")
			return
		case err != nil:
			http.Redirect(w, r, previewURL+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}

		source := SourcePaste
		if sess.SourceName != SourcePaste {
			source = SourceFile
		}
		res, err := loadClaimed(r, svc, sessions, sess, source)
		if err != nil {
			slog.Error("record import run failed", slog.String("target", sess.Target.ID), slog.Any("err", err))
		}
		if !res.Success {
			http.Redirect(w, r, previewURL+"?error="+url.QueryEscape(res.Message), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, previewURL+"?status="+url.QueryEscape(res.Message), http.StatusSeeOther)
	}
}

// loadClaimed runs the upload and releases the claim before the caller
// redirects, so the preview it lands on already shows the result.
func loadClaimed(r *http.Request, svc *Service, sessions *cache.ImportSessionCache, sess *importer.Session, source string) (importer.LoadResult, error) {
	defer sessions.Release(sess)
	return svc.Load(r.Context(), sess, sessioncontext.UserIDFromContext(r.Context()), source)
}

func TemplateCSVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := importer.Lookup(chi.URLParam(r, "target"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+target.ID+`_template.csv"`)
		_, _ = w.Write([]byte(importer.TemplateCSV(target)))
	}
}

func redirectImportError(w http.ResponseWriter, r *http.Request, targetID, msg string) {
	q := url.Values{}
	q.Set("error", msg)
	if targetID != "" {
		q.Set("target", targetID)
	}
	http.Redirect(w, r, "/tasker/import?"+q.Encode(), http.StatusSeeOther)
}
