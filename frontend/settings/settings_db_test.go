package settings

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
	"wmsadmin/models"
)

func openSettingsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "settings-test.db")
	db, err := sqlite.OpenDB(dbPath)
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
	return db
}

func TestSaveImportSetting_Upsert(t *testing.T) {
	db := openSettingsTestDB(t)
	ctx := context.Background()

	if err := SaveImportSetting(ctx, db, audit.NewService(), 1, models.ImportSetting{TargetID: "products", BatchSize: 50, FallbackPolicy: "assume_new"}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if err := SaveImportSetting(ctx, db, audit.NewService(), 1, models.ImportSetting{TargetID: "products", BatchSize: 200, FallbackPolicy: "mark_error"}); err != nil {
		t.Fatalf("save settings again: %v", err)
	}

	got, ok, err := LoadImportSetting(ctx, db, "products")
	if err != nil || !ok {
		t.Fatalf("load setting: ok=%v err=%v", ok, err)
	}
	if got.BatchSize != 200 || got.FallbackPolicy != "mark_error" {
		t.Fatalf("expected latest values, got %+v", got)
	}

	var audits int
	if err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM audit_logs WHERE action = 'import_settings.save'`).Scan(ctx, &audits)
	}); err != nil {
		t.Fatalf("count audits: %v", err)
	}
	if audits != 2 {
		t.Fatalf("expected 2 audit rows, got %d", audits)
	}
}

func TestLoadImportSetting_Missing(t *testing.T) {
	db := openSettingsTestDB(t)
	_, ok, err := LoadImportSetting(context.Background(), db, "serials")
	if err != nil || ok {
		t.Fatalf("expected no stored setting, got ok=%v err=%v", ok, err)
	}
}

func TestSaveImportSetting_Validation(t *testing.T) {
	db := openSettingsTestDB(t)
	ctx := context.Background()

	err := SaveImportSetting(ctx, db, nil, 1, models.ImportSetting{TargetID: "products", BatchSize: 0, FallbackPolicy: "assume_new"})
	if !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected invalid batch size, got %v", err)
	}
	err = SaveImportSetting(ctx, db, nil, 1, models.ImportSetting{TargetID: "products", BatchSize: 10, FallbackPolicy: "retry"})
	if !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected invalid policy, got %v", err)
	}
	err = SaveImportSetting(ctx, db, nil, 1, models.ImportSetting{TargetID: "pallet_receipts", BatchSize: 10, FallbackPolicy: "assume_new"})
	if !errors.Is(err, importer.ErrUnknownTarget) {
		t.Fatalf("expected unknown target, got %v", err)
	}
}
