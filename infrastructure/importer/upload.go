package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wmsadmin/infrastructure/backend"
)

const DefaultBatchSize = 100

// RowWriter is the slice of the backend the uploader needs.
type RowWriter interface {
	Insert(ctx context.Context, table string, rows []backend.Row) error
	Upsert(ctx context.Context, table string, rows []backend.Row, onConflict []string) error
}

// Recorder receives upload counters. A nil Recorder records nothing.
type Recorder interface {
	ObserveRows(target string, status RowStatus, n int)
	ObserveBatch(target string, ok bool, d time.Duration)
}

// Uploader sends the new rows of a session to the backend in sequential batches.
type Uploader struct {
	Backend   RowWriter
	BatchSize int
	Dedup     BatchDedupPolicy
	Metrics   Recorder
	Logger    *slog.Logger
}

func (u Uploader) batchSize() int {
	if u.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return u.BatchSize
}

func (u Uploader) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}

// Upload loads every row tagged new, then tags those rows loaded or error.
// The result is also stored on the session.
func (u Uploader) Upload(ctx context.Context, s *Session) LoadResult {
	target := s.Target
	total := len(s.Rows)

	var pending []int
	for i, r := range s.Rows {
		if r.Status == StatusNew {
			pending = append(pending, i)
		}
	}

	res := LoadResult{Total: total, Skipped: total - len(pending)}
	if len(pending) == 0 {
		res.Success = true
		res.Message = summary(res)
		u.record(target.ID, res)
		s.Result = &res
		return res
	}

	// merged holds rows collapsed into a duplicate of the same batch. They take
	// the outcome of that batch instead of joining the count below.
	type mergedRow struct {
		intoLine int
		batchOK  bool
	}
	merged := map[int]*mergedRow{}

	size := u.batchSize()
	batchNo := 0
	for start := 0; start < len(pending); start += size {
		end := min(start+size, len(pending))
		batchNo++
		batch := pending[start:end]

		payload := make([]backend.Row, 0, len(batch))
		for _, idx := range batch {
			payload = append(payload, buildPayload(s.Rows[idx].Values, target.DefaultValues))
		}
		var batchMerged []*mergedRow
		if len(target.UniqueKey) > 0 {
			var into map[int]int
			payload, into = dedupBatch(payload, target.UniqueKey, u.Dedup)
			for from, to := range into {
				m := &mergedRow{intoLine: s.Rows[batch[to]].Line}
				merged[batch[from]] = m
				batchMerged = append(batchMerged, m)
			}
			res.Merged += len(into)
		}

		began := time.Now()
		var err error
		if len(target.UniqueKey) == 0 || target.AppendOnly {
			err = u.Backend.Insert(ctx, target.Table, payload)
		} else {
			err = u.Backend.Upsert(ctx, target.Table, payload, target.UniqueKey)
		}
		if u.Metrics != nil {
			u.Metrics.ObserveBatch(target.ID, err == nil, time.Since(began))
		}

		if err != nil {
			res.Errors += len(payload)
			res.ErrorDetails = append(res.ErrorDetails, batchError(batchNo, target.UniqueKey, err))
			u.logger().Error("import batch failed",
				slog.String("target", target.ID),
				slog.Int("batch", batchNo),
				slog.Any("err", err))
			continue
		}
		for _, m := range batchMerged {
			m.batchOK = true
		}
		res.Inserted += len(payload)
	}

	loaded := 0
	for _, idx := range pending {
		if m, ok := merged[idx]; ok {
			s.Rows[idx].Note = fmt.Sprintf("merged into line %d", m.intoLine)
			if m.batchOK {
				s.Rows[idx].Status = StatusLoaded
			} else {
				s.Rows[idx].Status = StatusError
			}
			continue
		}
		if loaded < res.Inserted {
			s.Rows[idx].Status = StatusLoaded
			s.Rows[idx].Note = ""
			loaded++
			continue
		}
		s.Rows[idx].Status = StatusError
		s.Rows[idx].Note = "not loaded"
	}

	res.Success = res.Errors == 0
	res.Message = summary(res)
	u.record(target.ID, res)
	s.Result = &res
	return res
}

func (u Uploader) record(target string, res LoadResult) {
	if u.Metrics == nil {
		return
	}
	u.Metrics.ObserveRows(target, StatusLoaded, res.Inserted)
	u.Metrics.ObserveRows(target, StatusExisting, res.Skipped)
	u.Metrics.ObserveRows(target, StatusError, res.Errors)
}

func summary(res LoadResult) string {
	msg := fmt.Sprintf("%d inserted, %d skipped, %d errors", res.Inserted, res.Skipped, res.Errors)
	if res.Merged > 0 {
		msg += fmt.Sprintf(", %d merged into duplicates", res.Merged)
	}
	return msg
}

func batchError(n int, uniqueKey []string, err error) string {
	msg := err.Error()
	var be *backend.Error
	if errors.As(err, &be) {
		msg = be.Message
	}
	if backend.IsUniqueViolation(err) {
		return fmt.Sprintf("batch %d: duplicate key (%s): %s", n, strings.Join(uniqueKey, ", "), msg)
	}
	return fmt.Sprintf("batch %d: %s", n, msg)
}

// buildPayload copies a parsed row and fills defaults for absent or empty fields.
func buildPayload(values ParsedRow, defaults map[string]any) backend.Row {
	out := make(backend.Row, len(values)+len(defaults))
	for k, v := range values {
		out[k] = v
	}
	for k, v := range defaults {
		if cur, ok := out[k]; !ok || !hasValue(cur) {
			out[k] = v
		}
	}
	return out
}

func batchKey(row backend.Row, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = keyText(row[c])
	}
	return strings.Join(parts, "|")
}

// dedupBatch collapses rows sharing a unique key. Output keeps first-seen key
// order. into maps each dropped input position to the input position whose
// row was kept for that key.
func dedupBatch(rows []backend.Row, cols []string, policy BatchDedupPolicy) (out []backend.Row, into map[int]int) {
	pos := make(map[string]int, len(rows))
	src := make([]int, 0, len(rows))
	out = make([]backend.Row, 0, len(rows))
	into = map[int]int{}
	for i, row := range rows {
		k := batchKey(row, cols)
		j, seen := pos[k]
		if !seen {
			pos[k] = len(out)
			out = append(out, row)
			src = append(src, i)
			continue
		}
		if policy == BatchDedupFirstWins {
			into[i] = src[j]
			continue
		}
		into[src[j]] = i
		out[j] = row
		src[j] = i
	}
	// Point every dropped row at the final survivor of its key.
	for from := range into {
		into[from] = src[pos[batchKey(rows[from], cols)]]
	}
	return out, into
}
