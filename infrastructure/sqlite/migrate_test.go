package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
)

func openMigrateTestDB(t *testing.T, name string) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestApplyEmbeddedMigrations(t *testing.T) {
	db := openMigrateTestDB(t, "embedded.db")
	ctx := context.Background()

	if err := ApplyEmbeddedMigrations(ctx, db); err != nil {
		t.Fatalf("apply embedded migrations: %v", err)
	}

	for _, table := range []string{"users", "import_runs", "serials", "dispatch_log"} {
		var count int64
		err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
			return tx.NewRaw(
				`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
			).Scan(ctx, &count)
		})
		if err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected %s table after embedded migrations, got %d", table, count)
		}
	}

	applied, err := AppliedMigrations(ctx, db)
	if err != nil {
		t.Fatalf("applied migrations: %v", err)
	}
	if len(applied) != 2 || applied[0].Name != "0001_core.sql" || len(applied[0].Checksum) != 16 {
		t.Fatalf("unexpected applied migrations %+v", applied)
	}
}

func TestApplyMigrationsRunsEachFileOnce(t *testing.T) {
	db := openMigrateTestDB(t, "dir.db")
	ctx := context.Background()
	dir := t.TempDir()

	// Not idempotent on purpose: a second run would fail on the duplicate row.
	files := map[string]string{
		"0001_a.sql": "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL UNIQUE);",
		"0002_b.sql": "INSERT INTO notes (body) VALUES ('first');",
		"README.txt": "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	for i := 0; i < 2; i++ {
		if err := ApplyMigrationsFromDir(ctx, db, dir); err != nil {
			t.Fatalf("apply run %d: %v", i+1, err)
		}
	}
	n, err := QueryValue[int64](ctx, db, `SELECT COUNT(*) FROM notes`)
	if err != nil {
		t.Fatalf("count notes: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one note, got %d", n)
	}

	// An edited file is reported, not re-run.
	if err := os.WriteFile(filepath.Join(dir, "0002_b.sql"), []byte("INSERT INTO notes (body) VALUES ('second');"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := ApplyMigrationsFromDir(ctx, db, dir); err != nil {
		t.Fatalf("apply after edit: %v", err)
	}
	if n, _ := QueryValue[int64](ctx, db, `SELECT COUNT(*) FROM notes`); n != 1 {
		t.Fatalf("edited migration must not re-run, got %d notes", n)
	}
}

func TestApplyMigrationsMissingDir(t *testing.T) {
	db := openMigrateTestDB(t, "missing.db")
	if err := ApplyMigrationsFromDir(context.Background(), db, filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}
