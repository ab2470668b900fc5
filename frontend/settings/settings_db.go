package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
	"wmsadmin/models"
)

var ErrInvalidSetting = errors.New("invalid import setting")

// LoadImportSetting returns the stored override for targetID, if any.
func LoadImportSetting(ctx context.Context, db *sqlite.DB, targetID string) (models.ImportSetting, bool, error) {
	var setting models.ImportSetting
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&setting).Where("target_id = ?", targetID).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.ImportSetting{}, false, nil
	}
	if err != nil {
		return models.ImportSetting{}, false, err
	}
	return setting, true, nil
}

func ListImportSettings(ctx context.Context, db *sqlite.DB) (map[string]models.ImportSetting, error) {
	rows := make([]models.ImportSetting, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&rows).Order("target_id ASC").Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.ImportSetting, len(rows))
	for _, r := range rows {
		out[r.TargetID] = r
	}
	return out, nil
}

func SaveImportSetting(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, setting models.ImportSetting) error {
	if _, err := importer.Lookup(setting.TargetID); err != nil {
		return err
	}
	if setting.BatchSize < 1 || setting.BatchSize > 1000 {
		return fmt.Errorf("%w: batch size must be between 1 and 1000", ErrInvalidSetting)
	}
	switch importer.DedupFallbackPolicy(setting.FallbackPolicy) {
	case importer.FallbackAssumeNew, importer.FallbackMarkError:
	default:
		return fmt.Errorf("%w: unknown fallback policy %q", ErrInvalidSetting, setting.FallbackPolicy)
	}

	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before *models.ImportSetting
		var existing models.ImportSetting
		err := tx.NewSelect().Model(&existing).Where("target_id = ?", setting.TargetID).Limit(1).Scan(ctx)
		switch {
		case err == nil:
			before = &existing
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO import_settings (target_id, batch_size, fallback_policy, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(target_id) DO UPDATE SET
  batch_size = excluded.batch_size,
  fallback_policy = excluded.fallback_policy,
  updated_at = CURRENT_TIMESTAMP`, setting.TargetID, setting.BatchSize, setting.FallbackPolicy); err != nil {
			return err
		}

		if auditSvc != nil {
			after := map[string]any{"batch_size": setting.BatchSize, "fallback_policy": setting.FallbackPolicy}
			if err := auditSvc.Write(ctx, tx, userID, "import_settings.save", "import_settings", setting.TargetID, before, after); err != nil {
				return err
			}
		}
		return nil
	})
}
