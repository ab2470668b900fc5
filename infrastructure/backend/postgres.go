package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wmsadmin/infrastructure/realtime"
)

// Postgres runs the backend contract on a pgx connection pool.
type Postgres struct {
	pool      *pgxpool.Pool
	publisher Publisher
}

// NewPostgres opens a pool for dsn and returns it with a close func.
func NewPostgres(ctx context.Context, dsn string, publisher Publisher) (*Postgres, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pgxpool ping: %w", err)
	}
	return &Postgres{pool: pool, publisher: publisher}, pool.Close, nil
}

func pgPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func pgInList(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = pgPlaceholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func pgSelectIn(ctx context.Context, q pgQuerier, table, column string, values []any) ([]Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)", quoteIdent(table), quoteIdent(column), pgInList(len(values)))
	rows, err := q.Query(ctx, query, values...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, Row(m))
	}
	return out, nil
}

func (c *Postgres) SelectIn(ctx context.Context, table, column string, values []any) ([]Row, error) {
	if err := validIdent(table, column); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []Row{}, nil
	}
	rows, err := pgSelectIn(ctx, c.pool, table, column, values)
	if err != nil {
		return nil, mapPgError(err)
	}
	return rows, nil
}

func (c *Postgres) Insert(ctx context.Context, table string, rows []Row) error {
	return c.write(ctx, table, rows, nil)
}

func (c *Postgres) Upsert(ctx context.Context, table string, rows []Row, onConflict []string) error {
	if len(onConflict) == 0 {
		return &Error{Code: CodeInvalidName, Message: "upsert requires a conflict target"}
	}
	return c.write(ctx, table, rows, onConflict)
}

func (c *Postgres) write(ctx context.Context, table string, rows []Row, onConflict []string) error {
	if len(rows) == 0 {
		return nil
	}
	query, args, err := writeStatement(table, rows, onConflict, pgPlaceholder)
	if err != nil {
		return err
	}

	var events []realtime.Event
	err = pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		var existing []Row
		if len(onConflict) > 0 {
			found, err := pgSelectIn(ctx, tx, table, onConflict[0], firstColumnValues(rows, onConflict[0]))
			if err != nil {
				return err
			}
			existing = found
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
		events = classifyWrites(table, rows, onConflict, existing)
		return nil
	})
	if err != nil {
		return mapPgError(err)
	}
	publishAll(c.publisher, events)
	return nil
}

func (c *Postgres) Delete(ctx context.Context, table, column string, values []any) (int64, error) {
	if err := validIdent(table, column); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}

	var deleted int64
	var events []realtime.Event
	err := pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		old, err := pgSelectIn(ctx, tx, table, column, values)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", quoteIdent(table), quoteIdent(column), pgInList(len(values))), values...)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		for _, row := range old {
			events = append(events, realtime.Event{Table: table, Type: realtime.EventDelete, Old: map[string]any(row)})
		}
		return nil
	})
	if err != nil {
		return 0, mapPgError(err)
	}
	publishAll(c.publisher, events)
	return deleted, nil
}

func (c *Postgres) List(ctx context.Context, table string, limit int) ([]Row, error) {
	if err := validIdent(table); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 500
	}
	rows, err := c.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY id DESC LIMIT $1", quoteIdent(table)), limit)
	if err != nil {
		return nil, mapPgError(err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(err)
	}
	out := make([]Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, Row(m))
	}
	return out, nil
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := pgErr.Message
		if strings.TrimSpace(pgErr.Detail) != "" {
			msg += ": " + pgErr.Detail
		}
		return &Error{Code: pgErr.Code, Message: msg, Err: err}
	}
	return &Error{Code: CodeUnknown, Message: err.Error(), Err: err}
}
