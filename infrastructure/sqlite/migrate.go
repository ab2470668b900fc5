package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/zeebo/xxh3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    checksum TEXT NOT NULL,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// ApplyMigrations runs pending *.sql files in lexical order and records each
// one in schema_migrations. If migrationsDir is empty the embedded set is used.
func ApplyMigrations(ctx context.Context, db *DB, migrationsDir string) error {
	if strings.TrimSpace(migrationsDir) == "" {
		return ApplyEmbeddedMigrations(ctx, db)
	}
	return ApplyMigrationsFromDir(ctx, db, migrationsDir)
}

func ApplyEmbeddedMigrations(ctx context.Context, db *DB) error {
	_, err := applyMigrations(ctx, db, embeddedMigrations, "migrations")
	return err
}

func ApplyMigrationsFromDir(ctx context.Context, db *DB, migrationsDir string) error {
	if _, err := os.Stat(migrationsDir); err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	_, err := applyMigrations(ctx, db, os.DirFS(migrationsDir), ".")
	return err
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Name     string `bun:"name"`
	Checksum string `bun:"checksum"`
}

// AppliedMigrations lists recorded migrations by name.
func AppliedMigrations(ctx context.Context, db *DB) ([]AppliedMigration, error) {
	out := make([]AppliedMigration, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT name, checksum FROM schema_migrations ORDER BY name`).Scan(ctx, &out)
	})
	return out, err
}

func applyMigrations(ctx context.Context, db *DB, fsys fs.FS, root string) (int, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return 0, fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && path.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.WriteSQL.ExecContext(ctx, migrationsTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	applied := make(map[string]string)
	recorded, err := AppliedMigrations(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("load applied migrations: %w", err)
	}
	for _, m := range recorded {
		applied[m.Name] = m.Checksum
	}

	ran := 0
	for _, name := range files {
		sqlBytes, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return ran, fmt.Errorf("read migration %s: %w", name, err)
		}
		sum := checksum(sqlBytes)
		if prev, ok := applied[name]; ok {
			if prev != sum {
				slog.Warn("migration changed after it was applied; not re-running",
					slog.String("name", name), slog.String("applied", prev), slog.String("current", sum))
			}
			continue
		}
		if err := applySingleMigration(ctx, db, name, sum, sqlBytes); err != nil {
			return ran, err
		}
		ran++
	}
	if ran > 0 {
		slog.Info("migrations applied", slog.Int("count", ran))
	}
	return ran, nil
}

func checksum(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}

func applySingleMigration(ctx context.Context, db *DB, name, sum string, sqlBytes []byte) error {
	sqlText := string(sqlBytes)
	const record = `INSERT INTO schema_migrations (name, checksum) VALUES (?, ?)`

	// Files that manage their own transaction run on the raw writer.
	upper := strings.ToUpper(sqlText)
	if strings.Contains(upper, "BEGIN TRANSACTION") || strings.Contains(upper, "BEGIN;") {
		if _, err := db.WriteSQL.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := db.WriteSQL.ExecContext(ctx, record, name, sum); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		return nil
	}

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, sqlText); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, record, name, sum)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}
