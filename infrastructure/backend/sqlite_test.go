package backend

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"wmsadmin/infrastructure/realtime"
	"wmsadmin/infrastructure/sqlite"
)

func openBackendTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "backend-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestSQLiteInsertSelectDelete(t *testing.T) {
	db := openBackendTestDB(t)
	hub := realtime.NewHub()
	events, cancel := hub.Subscribe("products", 16)
	defer cancel()
	client := NewSQLite(db, hub)
	ctx := context.Background()

	err := client.Insert(ctx, "products", []Row{
		{"codigo": "P1", "descripcion": "Tornillo", "unidad": "UN", "peso": 0.5},
		{"codigo": "P2", "descripcion": "Tuerca", "unidad": "UN", "peso": 0.2},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 insert events, got %d", len(events))
	}

	found, err := client.SelectIn(ctx, "products", "codigo", []any{"P1", "P9"})
	if err != nil {
		t.Fatalf("select in: %v", err)
	}
	if len(found) != 1 || found[0]["codigo"] != "P1" {
		t.Fatalf("unexpected select result: %+v", found)
	}

	deleted, err := client.Delete(ctx, "products", "codigo", []any{"P1"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted row, got %d", deleted)
	}

	rows, err := client.List(ctx, "products", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0]["codigo"] != "P2" {
		t.Fatalf("unexpected remaining rows: %+v", rows)
	}
}

func TestSQLiteInsertDuplicateIsUniqueViolation(t *testing.T) {
	db := openBackendTestDB(t)
	client := NewSQLite(db, nil)
	ctx := context.Background()

	row := Row{"nv": "1001", "codigo": "SKU1", "cantidad": 1.0}
	if err := client.Insert(ctx, "sales_order_lines", []Row{row}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := client.Insert(ctx, "sales_order_lines", []Row{row})
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestSQLiteUpsertUpdatesOnConflict(t *testing.T) {
	db := openBackendTestDB(t)
	hub := realtime.NewHub()
	events, cancel := hub.Subscribe(realtime.AllTables, 16)
	defer cancel()
	client := NewSQLite(db, hub)
	ctx := context.Background()

	key := []string{"nv", "codigo"}
	if err := client.Upsert(ctx, "sales_order_lines", []Row{{"nv": "1001", "codigo": "SKU1", "cantidad": 1.0}}, key); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := client.Upsert(ctx, "sales_order_lines", []Row{{"nv": "1001", "codigo": "SKU1", "cantidad": 7.0}}, key); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := client.SelectIn(ctx, "sales_order_lines", "nv", []any{"1001"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row after upsert, got %d", len(rows))
	}
	if rows[0]["cantidad"] != 7.0 {
		t.Fatalf("expected updated cantidad 7, got %#v", rows[0]["cantidad"])
	}

	first := <-events
	second := <-events
	if first.Type != realtime.EventInsert || second.Type != realtime.EventUpdate {
		t.Fatalf("expected INSERT then UPDATE, got %s then %s", first.Type, second.Type)
	}
}

func TestSQLiteUnknownTable(t *testing.T) {
	db := openBackendTestDB(t)
	client := NewSQLite(db, nil)

	_, err := client.SelectIn(context.Background(), "missing_table", "id", []any{1})
	if err == nil {
		t.Fatalf("expected error for missing table")
	}
	if IsUniqueViolation(err) {
		t.Fatalf("missing table must not look like a duplicate key")
	}
}
