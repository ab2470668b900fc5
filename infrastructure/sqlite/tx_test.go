package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/uptrace/bun"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "migrations")
	if err := ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

const insertUserSQL = `INSERT INTO users (username, password_hash, role, created_at, updated_at)
VALUES (?, 'hash', 'operator', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

func countUsersNamed(t *testing.T, db *DB, username string) int64 {
	t.Helper()
	n, err := QueryValue[int64](context.Background(), db, `SELECT COUNT(*) FROM users WHERE username = ?`, username)
	if err != nil {
		t.Fatalf("count %s: %v", username, err)
	}
	return n
}

func TestWithWriteTx(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		username string
		fnErr    error
		want     int64
	}{
		{name: "commit", username: "commit-user", want: 1},
		{name: "rollback", username: "rollback-user", fnErr: boom, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
				if _, err := tx.ExecContext(ctx, insertUserSQL, tt.username); err != nil {
					return err
				}
				return tt.fnErr
			})
			if !errors.Is(err, tt.fnErr) {
				t.Fatalf("expected %v, got %v", tt.fnErr, err)
			}
			if got := countUsersNamed(t, db, tt.username); got != tt.want {
				t.Fatalf("expected %d rows for %s, got %d", tt.want, tt.username, got)
			}
		})
	}
}

func TestWithReadTxRejectsWrite(t *testing.T) {
	db := openTestDB(t)
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, insertUserSQL, "read-only-user")
		return err
	})
	if got := countUsersNamed(t, db, "read-only-user"); err == nil && got > 0 {
		t.Fatalf("write leaked through read tx")
	}
}

func TestNilDBReturnsError(t *testing.T) {
	var db *DB
	noop := func(context.Context, bun.Tx) error { return nil }
	if err := db.WithWriteTx(context.Background(), noop); !errors.Is(err, errNotInitialized) {
		t.Fatalf("write on nil db: %v", err)
	}
	if err := db.WithReadTx(context.Background(), noop); !errors.Is(err, errNotInitialized) {
		t.Fatalf("read on nil db: %v", err)
	}
}

func TestQueryValue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := QueryValue[int64](ctx, db, `SELECT COUNT(*) FROM users`)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty users table, got %d", n)
	}

	mode, err := QueryValue[string](ctx, db, `PRAGMA journal_mode`)
	if err != nil {
		t.Fatalf("journal mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenDBRequiresPath(t *testing.T) {
	if _, err := OpenDB("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
