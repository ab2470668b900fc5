package dataimport

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
	"wmsadmin/models"
)

type RunRecord struct {
	ID            int64  `bun:"id"`
	Username      string `bun:"username"`
	TargetID      string `bun:"target_id"`
	Source        string `bun:"source"`
	SourceName    string `bun:"source_name"`
	TotalCount    int    `bun:"total_count"`
	InsertedCount int    `bun:"inserted_count"`
	SkippedCount  int    `bun:"skipped_count"`
	ErrorCount    int    `bun:"error_count"`
	Success       bool   `bun:"success"`
	Message       string `bun:"message"`
	CreatedAt     string `bun:"created_at"`
}

// RecordRun stores the outcome of one upload and its audit record in one transaction.
func RecordRun(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID *int64, source string, s *importer.Session, res importer.LoadResult) (int64, error) {
	run := &models.ImportRun{
		UserID:        userID,
		TargetID:      s.Target.ID,
		Source:        source,
		SourceName:    s.SourceName,
		InputHash:     s.InputHash,
		TotalCount:    res.Total,
		InsertedCount: res.Inserted,
		SkippedCount:  res.Skipped,
		ErrorCount:    res.Errors,
		Success:       res.Success,
		Message:       res.Message,
	}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(run).Exec(ctx); err != nil {
			return err
		}
		if auditSvc == nil {
			return nil
		}
		actor := audit.SystemActor
		if userID != nil {
			actor = *userID
		}
		after := map[string]any{
			"target":   s.Target.ID,
			"source":   source,
			"total":    res.Total,
			"inserted": res.Inserted,
			"skipped":  res.Skipped,
			"errors":   res.Errors,
		}
		return auditSvc.Write(ctx, tx, actor, "import.upload", "import_runs", fmt.Sprintf("%d", run.ID), nil, after)
	})
	return run.ID, err
}

// HasSuccessfulRun reports whether input with hash was already loaded into targetID.
func HasSuccessfulRun(ctx context.Context, db *sqlite.DB, targetID, hash string) (bool, error) {
	n, err := sqlite.QueryValue[int64](ctx, db, `
SELECT COUNT(*) FROM import_runs
WHERE target_id = ? AND input_hash = ? AND success = 1`, targetID, hash)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func ListRecentRuns(ctx context.Context, db *sqlite.DB, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows := make([]RunRecord, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT ir.id, COALESCE(u.username, '') AS username, ir.target_id, ir.source,
       COALESCE(ir.source_name, '') AS source_name,
       ir.total_count, ir.inserted_count, ir.skipped_count, ir.error_count, ir.success,
       COALESCE(ir.message, '') AS message,
       strftime('%d/%m/%Y %H:%M', ir.created_at) AS created_at
FROM import_runs ir
LEFT JOIN users u ON u.id = ir.user_id
ORDER BY ir.id DESC
LIMIT ?`, limit).Scan(ctx, &rows)
	})
	return rows, err
}
