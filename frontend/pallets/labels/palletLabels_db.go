package labels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/sqlite"
)

var ErrPalletNotFound = errors.New("pallet not found")

// LoadPalletRecord returns the pallet_records row for code. The description
// comes from products when the product code is known.
func LoadPalletRecord(ctx context.Context, db *sqlite.DB, code string) (PalletRecord, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return PalletRecord{}, ErrPalletNotFound
	}
	var rec PalletRecord
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT pr.id, pr.pallet,
       COALESCE(pr.codigo, '') AS codigo,
       COALESCE(p.descripcion, '') AS descripcion,
       pr.cantidad,
       COALESCE(pr.ubicacion, '') AS ubicacion,
       COALESCE(pr.fecha, '') AS fecha
FROM pallet_records pr
LEFT JOIN products p ON p.codigo = pr.codigo
WHERE pr.pallet = ?
LIMIT 1`, code).Scan(ctx, &rec)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return PalletRecord{}, ErrPalletNotFound
	}
	if err != nil {
		return PalletRecord{}, fmt.Errorf("load pallet %s: %w", code, err)
	}
	return rec, nil
}
