package dataimport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/cache"
)

// gatedBackend holds every write until release is closed.
type gatedBackend struct {
	backend.Client
	writes  atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBackend) Insert(ctx context.Context, table string, rows []backend.Row) error {
	g.writes.Add(1)
	g.entered <- struct{}{}
	<-g.release
	return g.Client.Insert(ctx, table, rows)
}

func (g *gatedBackend) Upsert(ctx context.Context, table string, rows []backend.Row, onConflict []string) error {
	g.writes.Add(1)
	g.entered <- struct{}{}
	<-g.release
	return g.Client.Upsert(ctx, table, rows, onConflict)
}

func redirectError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	return loc.Query().Get("error")
}

func TestUploadRunsOncePerSession(t *testing.T) {
	db := openImportTestDB(t)
	gated := &gatedBackend{
		Client:  backend.NewSQLite(db, nil),
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	svc := newTestService(db, gated)
	sessions := cache.NewImportSessionCache(time.Minute)

	text := "N.Venta;Guía;Transportista;Bultos;Fecha\n1001;G-1;Chilexpress;2;15/03/2024\n1002;G-2;Starken;1;16/03/2024\n"
	sess, err := svc.Prepare(context.Background(), "dispatch_log", text, SourcePaste)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	sessions.Put(sess)

	r := chi.NewRouter()
	r.Get("/tasker/import/{sessionID}", ImportPreviewQueryHandler(sessions))
	r.Post("/tasker/import/{sessionID}/upload", ImportUploadCommandHandler(svc, sessions))
	uploadPath := "/tasker/import/" + sess.ID + "/upload"
	post := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, uploadPath, nil))
		return rec
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- post() }()
	select {
	case <-gated.entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("first upload never reached the backend")
	}

	if msg := redirectError(t, post()); msg != cache.ErrImportInProgress.Error() {
		t.Fatalf("second submit during upload: got error %q", msg)
	}

	preview := httptest.NewRecorder()
	r.ServeHTTP(preview, httptest.NewRequest(http.MethodGet, "/tasker/import/"+sess.ID, nil))
	if preview.Code != http.StatusOK || !strings.Contains(preview.Body.String(), "upload in progress") {
		t.Fatalf("preview during upload: %d", preview.Code)
	}

	close(gated.release)
	var rec *httptest.ResponseRecorder
	select {
	case rec = <-first:
	case <-time.After(5 * time.Second):
		t.Fatalf("first upload did not finish")
	}
	if msg := redirectError(t, rec); msg != "" {
		t.Fatalf("first upload failed: %q", msg)
	}

	if msg := redirectError(t, post()); msg != cache.ErrImportAlreadyUploaded.Error() {
		t.Fatalf("submit after upload: got error %q", msg)
	}
	if n := gated.writes.Load(); n != 1 {
		t.Fatalf("expected one backend write for the session, got %d", n)
	}

	runs, err := ListRecentRuns(context.Background(), db, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(runs))
	}
}
