package exports

import (
	"context"
	"fmt"
	"io"

	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
)

// MaxExportRows caps a single export.
const MaxExportRows = 100000

type ExportRun struct {
	ID         int64  `bun:"id"`
	Username   string `bun:"username"`
	ExportType string `bun:"export_type"`
	RowCount   int    `bun:"row_count"`
	CreatedAt  string `bun:"created_at"`
}

// writeTargetCSV writes every stored row of target with the column keys as header.
func writeTargetCSV(ctx context.Context, client backend.Lister, w io.Writer, target importer.ImportTargetSpec) (int, error) {
	rows, err := client.List(ctx, target.Table, MaxExportRows)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", target.Table, err)
	}
	cols := target.ColumnKeys()
	if _, err := io.WriteString(w, importer.QuoteCSVRow(cols)+"\n"); err != nil {
		return 0, err
	}
	for _, row := range rows {
		if _, err := io.WriteString(w, importer.QuoteCSVRow(importer.RowFields(row, cols))+"\n"); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func recordExportRun(ctx context.Context, db *sqlite.DB, userID *int64, exportType string, rowCount int) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var uid any = nil
		if userID != nil {
			uid = *userID
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO export_runs (user_id, export_type, row_count, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`, uid, exportType, rowCount)
		return err
	})
}

func listRecentExports(ctx context.Context, db *sqlite.DB, limit int) ([]ExportRun, error) {
	runs := make([]ExportRun, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT er.id, COALESCE(u.username, '') AS username, er.export_type, er.row_count,
       strftime('%Y-%m-%d %H:%M', er.created_at) AS created_at
FROM export_runs er
LEFT JOIN users u ON u.id = er.user_id
ORDER BY er.id DESC
LIMIT ?`, limit).Scan(ctx, &runs)
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func exportTypeTarget(targetID string) string {
	return "csv:" + targetID
}
