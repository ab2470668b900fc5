// Package backend is the generic relational client the import pipeline and the
// table views talk to: select-in, insert, upsert with a conflict target, delete
// and list over named relations.
package backend

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"wmsadmin/infrastructure/realtime"
)

// SQLSTATE codes surfaced through Error.Code.
const (
	CodeUniqueViolation  = "23505"
	CodeNotNullViolation = "23502"
	CodeIntegrity        = "23000"
	CodeUndefinedTable   = "42P01"
	CodeInvalidName      = "42602"
	CodeUnknown          = "XX000"
)

// Row is one record keyed by column name.
type Row map[string]any

// Client is implemented by every backend.
type Client interface {
	SelectIn(ctx context.Context, table, column string, values []any) ([]Row, error)
	Insert(ctx context.Context, table string, rows []Row) error
	Upsert(ctx context.Context, table string, rows []Row, onConflict []string) error
	Delete(ctx context.Context, table, column string, values []any) (int64, error)
	List(ctx context.Context, table string, limit int) ([]Row, error)
}

// Lister is the read side used by the table views and exports.
type Lister interface {
	List(ctx context.Context, table string, limit int) ([]Row, error)
}

// Publisher receives one event per mutated row.
type Publisher interface {
	Publish(ev realtime.Event)
}

// Error is a backend failure with a distinguishable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUniqueViolation reports whether err signals a duplicate key.
func IsUniqueViolation(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == CodeUniqueViolation
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdent(names ...string) error {
	for _, name := range names {
		if !identPattern.MatchString(name) {
			return &Error{Code: CodeInvalidName, Message: fmt.Sprintf("invalid identifier %q", name)}
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}

// rowColumns returns the sorted union of keys across rows.
func rowColumns(rows []Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// normalizeValue flattens pointer values the drivers would otherwise reject.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case *float64:
		if t == nil {
			return nil
		}
		return *t
	case []byte:
		return string(t)
	default:
		return v
	}
}

// writeStatement builds a multi-row INSERT, with ON CONFLICT DO UPDATE when onConflict is set.
func writeStatement(table string, rows []Row, onConflict []string, placeholder func(n int) string) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("no rows to write")
	}
	cols := rowColumns(rows)
	if err := validIdent(append([]string{table}, cols...)...); err != nil {
		return "", nil, err
	}
	if err := validIdent(onConflict...); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	args := make([]any, 0, len(rows)*len(cols))
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(quoteIdents(cols), ", "))
	b.WriteString(") VALUES ")
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, col := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, normalizeValue(row[col]))
			b.WriteString(placeholder(len(args)))
		}
		b.WriteString(")")
	}

	if len(onConflict) > 0 {
		conflict := make(map[string]struct{}, len(onConflict))
		for _, c := range onConflict {
			conflict[c] = struct{}{}
		}
		sets := make([]string, 0, len(cols))
		for _, col := range cols {
			if _, isKey := conflict[col]; isKey {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", quoteIdent(col), quoteIdent(col)))
		}
		if len(sets) == 0 {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", quoteIdent(onConflict[0]), quoteIdent(onConflict[0])))
		}
		b.WriteString(" ON CONFLICT (")
		b.WriteString(strings.Join(quoteIdents(onConflict), ", "))
		b.WriteString(") DO UPDATE SET ")
		b.WriteString(strings.Join(sets, ", "))
	}
	return b.String(), args, nil
}

// keyOf joins the string form of row[cols] with "|".
func keyOf(row Row, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(normalizeValue(row[c]))
	}
	return strings.Join(parts, "|")
}

// classifyWrites splits upserted rows into inserts and updates given the rows
// that already matched the conflict key.
func classifyWrites(table string, rows []Row, onConflict []string, existing []Row) []realtime.Event {
	before := make(map[string]Row, len(existing))
	for _, row := range existing {
		before[keyOf(row, onConflict)] = row
	}
	events := make([]realtime.Event, 0, len(rows))
	for _, row := range rows {
		ev := realtime.Event{Table: table, Type: realtime.EventInsert, New: map[string]any(row)}
		if len(onConflict) > 0 {
			if old, ok := before[keyOf(row, onConflict)]; ok {
				ev.Type = realtime.EventUpdate
				ev.Old = map[string]any(old)
			}
		}
		events = append(events, ev)
	}
	return events
}

func publishAll(p Publisher, events []realtime.Event) {
	if p == nil {
		return
	}
	for _, ev := range events {
		p.Publish(ev)
	}
}

func firstColumnValues(rows []Row, col string) []any {
	seen := make(map[string]struct{}, len(rows))
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		v := normalizeValue(row[col])
		key := fmt.Sprint(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
