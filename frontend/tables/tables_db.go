package tables

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/cache"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
)

const ListLimit = 2000

// Store is the slice of the backend the dashboard needs.
type Store interface {
	backend.Lister
	Delete(ctx context.Context, table, column string, values []any) (int64, error)
}

// LoadRows returns the latest rows of target, served from tc until a change
// event or poll tick invalidates them.
func LoadRows(ctx context.Context, tc *cache.TableCache, store Store, target importer.ImportTargetSpec) ([]backend.Row, error) {
	return tc.Get(ctx, target.Table, func(ctx context.Context) ([]backend.Row, error) {
		return store.List(ctx, target.Table, ListLimit)
	})
}

// DeleteRows removes rows of target by id and writes one audit record.
func DeleteRows(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, tc *cache.TableCache, store Store, userID int64, target importer.ImportTargetSpec, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	values := make([]any, len(ids))
	idText := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id
		idText[i] = strconv.FormatInt(id, 10)
	}

	deleted, err := store.Delete(ctx, target.Table, "id", values)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", target.Table, err)
	}
	tc.Invalidate(cache.Invalidation{Table: target.Table, Reason: "delete"})

	if auditSvc != nil && deleted > 0 {
		err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
			return auditSvc.Write(ctx, tx, userID, "table.delete", target.Table, strings.Join(idText, ","), nil, map[string]any{
				"target":  target.ID,
				"ids":     ids,
				"deleted": deleted,
			})
		})
		if err != nil {
			return deleted, fmt.Errorf("audit delete from %s: %w", target.Table, err)
		}
	}
	return deleted, nil
}
