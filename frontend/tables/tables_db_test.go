package tables

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	sessioncontext "wmsadmin/frontend/shared/context"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/cache"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
	"wmsadmin/models"
)

type countingStore struct {
	*backend.SQLite
	lists int
}

func (s *countingStore) List(ctx context.Context, table string, limit int) ([]backend.Row, error) {
	s.lists++
	return s.SQLite.List(ctx, table, limit)
}

func openTablesTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "tables-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	err = db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, role) VALUES (1, 'admin', 'hash', 'admin')`)
		return err
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return db
}

func seedSerials(t *testing.T, client *backend.SQLite, series ...string) {
	t.Helper()
	rows := make([]backend.Row, 0, len(series))
	for _, s := range series {
		rows = append(rows, backend.Row{"serie": s, "codigo": "SKU1"})
	}
	if err := client.Insert(context.Background(), "serials", rows); err != nil {
		t.Fatalf("seed serials: %v", err)
	}
}

func auditCount(t *testing.T, db *sqlite.DB, action string) int {
	t.Helper()
	var n int
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(1) FROM audit_logs WHERE action = ?`, action).Scan(ctx, &n)
	})
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	return n
}

func TestLoadRowsServesCacheUntilInvalidated(t *testing.T) {
	db := openTablesTestDB(t)
	client := backend.NewSQLite(db, nil)
	store := &countingStore{SQLite: client}
	tc := cache.NewTableCache()
	target, _ := importer.Lookup("serials")
	seedSerials(t, client, "S1", "S2")

	rows, err := LoadRows(context.Background(), tc, store, target)
	if err != nil || len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d (%v)", len(rows), err)
	}
	seedSerials(t, client, "S3")
	rows, _ = LoadRows(context.Background(), tc, store, target)
	if len(rows) != 2 || store.lists != 1 {
		t.Fatalf("expected cached rows, got %d rows after %d lists", len(rows), store.lists)
	}

	tc.Invalidate(cache.Invalidation{Reason: "poll"})
	rows, _ = LoadRows(context.Background(), tc, store, target)
	if len(rows) != 3 || store.lists != 2 {
		t.Fatalf("expected refetch after invalidation, got %d rows after %d lists", len(rows), store.lists)
	}
}

func TestDeleteRowsWritesAuditAndInvalidates(t *testing.T) {
	db := openTablesTestDB(t)
	client := backend.NewSQLite(db, nil)
	tc := cache.NewTableCache()
	target, _ := importer.Lookup("serials")
	seedSerials(t, client, "S1", "S2", "S3")

	rows, err := LoadRows(context.Background(), tc, client, target)
	if err != nil {
		t.Fatalf("load rows: %v", err)
	}
	var ids []int64
	for _, row := range rows {
		if row["serie"] != "S2" {
			ids = append(ids, row["id"].(int64))
		}
	}

	deleted, err := DeleteRows(context.Background(), db, audit.NewService(), tc, client, 1, target, ids)
	if err != nil {
		t.Fatalf("delete rows: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
	if tc.Fresh("serials") {
		t.Fatalf("cache should be stale after delete")
	}
	if got := auditCount(t, db, "table.delete"); got != 1 {
		t.Fatalf("expected 1 audit record, got %d", got)
	}
	rows, _ = LoadRows(context.Background(), tc, client, target)
	if len(rows) != 1 || rows[0]["serie"] != "S2" {
		t.Fatalf("unexpected remaining rows: %+v", rows)
	}

	if n, err := DeleteRows(context.Background(), db, audit.NewService(), tc, client, 1, target, nil); n != 0 || err != nil {
		t.Fatalf("empty delete should be a no-op, got %d %v", n, err)
	}
}

func tablesRouter(db *sqlite.DB, tc *cache.TableCache, store Store, session models.Session) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(sessioncontext.NewContextWithSession(req.Context(), session)))
		})
	})
	r.Get("/tasker/tables/{target}", TablePageQueryHandler(tc, store))
	r.Post("/tasker/tables/{target}/delete", TableDeleteCommandHandler(db, audit.NewService(), tc, store))
	return r
}

func TestTableHandlers(t *testing.T) {
	db := openTablesTestDB(t)
	client := backend.NewSQLite(db, nil)
	tc := cache.NewTableCache()
	seedSerials(t, client, "S<1>")

	viewer := models.Session{UserID: 1, ScreenPermissions: map[string]int{"TABLES_VIEW": 1}}
	rec := httptest.NewRecorder()
	tablesRouter(db, tc, client, viewer).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasker/tables/serials", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "S&lt;1&gt;") {
		t.Fatalf("expected escaped serial in page")
	}
	if strings.Contains(body, `name="id"`) {
		t.Fatalf("viewer must not get delete checkboxes")
	}

	rec = httptest.NewRecorder()
	tablesRouter(db, tc, client, viewer).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasker/tables/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown target, got %d", rec.Code)
	}

	operator := models.Session{UserID: 1, ScreenPermissions: map[string]int{"TABLES_VIEW": 1, "TABLES_DELETE": 1}}
	rows, _ := client.List(context.Background(), "serials", 10)
	form := url.Values{"id": {importer.FormatValue(rows[0]["id"])}}
	req := httptest.NewRequest(http.MethodPost, "/tasker/tables/serials/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	tablesRouter(db, tc, client, operator).ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "status=1+rows+deleted") {
		t.Fatalf("unexpected redirect %q", loc)
	}

	req = httptest.NewRequest(http.MethodPost, "/tasker/tables/serials/delete", strings.NewReader("id=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	tablesRouter(db, tc, client, operator).ServeHTTP(rec, req)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=") {
		t.Fatalf("invalid id should redirect with error, got %q", loc)
	}
}
