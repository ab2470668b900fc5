package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/realtime"
	"wmsadmin/infrastructure/sqlite"
)

// SQLite runs the backend contract on the split read/write sqlite handles.
type SQLite struct {
	db        *sqlite.DB
	publisher Publisher
}

func NewSQLite(db *sqlite.DB, publisher Publisher) *SQLite {
	return &SQLite{db: db, publisher: publisher}
}

func sqlitePlaceholder(int) string { return "?" }

func (c *SQLite) SelectIn(ctx context.Context, table, column string, values []any) ([]Row, error) {
	if err := validIdent(table, column); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []Row{}, nil
	}
	var rows []Row
	err := c.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		rows, err = selectIn(ctx, tx, table, column, values)
		return err
	})
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return rows, nil
}

func selectIn(ctx context.Context, tx bun.Tx, table, column string, values []any) ([]Row, error) {
	raw := make([]map[string]any, 0)
	q := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (?)", quoteIdent(table), quoteIdent(column))
	if err := tx.NewRaw(q, bun.In(values)).Scan(ctx, &raw); err != nil {
		return nil, err
	}
	return toRows(raw), nil
}

func (c *SQLite) Insert(ctx context.Context, table string, rows []Row) error {
	return c.write(ctx, table, rows, nil)
}

func (c *SQLite) Upsert(ctx context.Context, table string, rows []Row, onConflict []string) error {
	if len(onConflict) == 0 {
		return &Error{Code: CodeInvalidName, Message: "upsert requires a conflict target"}
	}
	return c.write(ctx, table, rows, onConflict)
}

func (c *SQLite) write(ctx context.Context, table string, rows []Row, onConflict []string) error {
	if len(rows) == 0 {
		return nil
	}
	query, args, err := writeStatement(table, rows, onConflict, sqlitePlaceholder)
	if err != nil {
		return err
	}

	var events []realtime.Event
	err = c.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var existing []Row
		if len(onConflict) > 0 {
			found, err := selectIn(ctx, tx, table, onConflict[0], firstColumnValues(rows, onConflict[0]))
			if err != nil {
				return err
			}
			existing = found
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		events = classifyWrites(table, rows, onConflict, existing)
		return nil
	})
	if err != nil {
		return mapSQLiteError(err)
	}
	publishAll(c.publisher, events)
	return nil
}

func (c *SQLite) Delete(ctx context.Context, table, column string, values []any) (int64, error) {
	if err := validIdent(table, column); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}

	var deleted int64
	var events []realtime.Event
	err := c.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		old, err := selectIn(ctx, tx, table, column, values)
		if err != nil {
			return err
		}
		q := fmt.Sprintf("DELETE FROM %s WHERE %s IN (?)", quoteIdent(table), quoteIdent(column))
		res, err := tx.ExecContext(ctx, q, bun.In(values))
		if err != nil {
			return err
		}
		deleted, _ = res.RowsAffected()
		for _, row := range old {
			events = append(events, realtime.Event{Table: table, Type: realtime.EventDelete, Old: map[string]any(row)})
		}
		return nil
	})
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	publishAll(c.publisher, events)
	return deleted, nil
}

func (c *SQLite) List(ctx context.Context, table string, limit int) ([]Row, error) {
	if err := validIdent(table); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 500
	}
	raw := make([]map[string]any, 0)
	err := c.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := fmt.Sprintf("SELECT * FROM %s ORDER BY id DESC LIMIT ?", quoteIdent(table))
		return tx.NewRaw(q, limit).Scan(ctx, &raw)
	})
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return toRows(raw), nil
}

func toRows(raw []map[string]any) []Row {
	rows := make([]Row, 0, len(raw))
	for _, m := range raw {
		row := make(Row, len(m))
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows
}

func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		code := CodeUnknown
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			code = CodeUniqueViolation
		case sqlite3.ErrConstraintNotNull:
			code = CodeNotNullViolation
		default:
			if se.Code == sqlite3.ErrConstraint {
				code = CodeIntegrity
			} else if strings.Contains(se.Error(), "no such table") {
				code = CodeUndefinedTable
			}
		}
		return &Error{Code: code, Message: se.Error(), Err: err}
	}
	if strings.Contains(err.Error(), "no such table") {
		return &Error{Code: CodeUndefinedTable, Message: err.Error(), Err: err}
	}
	return &Error{Code: CodeUnknown, Message: err.Error(), Err: err}
}
