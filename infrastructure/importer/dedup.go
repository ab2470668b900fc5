package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"wmsadmin/infrastructure/backend"
)

// ExistenceQuerier is the slice of the backend the checker needs.
type ExistenceQuerier interface {
	SelectIn(ctx context.Context, table, column string, values []any) ([]backend.Row, error)
}

// Checker tags parsed rows as new or existing.
type Checker struct {
	Backend  ExistenceQuerier
	Fallback DedupFallbackPolicy
	Logger   *slog.Logger
}

func (c Checker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Check queries the first unique key component of every row and tags the
// session in place. The returned error is the query failure, already handled
// by the fallback policy.
func (c Checker) Check(ctx context.Context, s *Session) error {
	target := s.Target
	if !target.SmartDedup || target.CheckKey() == "" {
		s.setAll(StatusNew, "")
		return nil
	}
	key := target.CheckKey()

	seen := map[string]struct{}{}
	var values []any
	for _, r := range s.Rows {
		v := keyText(r.Values[key])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	existing := map[string]struct{}{}
	if len(values) > 0 {
		found, err := c.Backend.SelectIn(ctx, target.Table, key, values)
		if err != nil {
			c.applyFallback(s, err)
			return fmt.Errorf("check existing %s: %w", target.Table, err)
		}
		for _, row := range found {
			existing[keyText(row[key])] = struct{}{}
		}
	}

	for i := range s.Rows {
		v := keyText(s.Rows[i].Values[key])
		switch {
		case v == "":
			s.Rows[i].Status = StatusError
			s.Rows[i].Note = fmt.Sprintf("missing %s", key)
		case hasKey(existing, v):
			s.Rows[i].Status = StatusExisting
			s.Rows[i].Note = ""
		default:
			s.Rows[i].Status = StatusNew
			s.Rows[i].Note = ""
		}
	}
	return nil
}

func (c Checker) applyFallback(s *Session, err error) {
	switch c.Fallback {
	case FallbackMarkError:
		c.logger().Warn("existence check failed; rows blocked", slog.String("target", s.Target.ID), slog.Any("err", err))
		s.setAll(StatusError, "existence check failed")
	default:
		c.logger().Warn("existence check failed; treating all rows as new", slog.String("target", s.Target.ID), slog.Any("err", err))
		s.setAll(StatusNew, "")
	}
}

func hasKey(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}

// keyText renders a key value the same way for parsed rows and backend rows.
func keyText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
