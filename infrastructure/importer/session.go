package importer

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

type RowStatus string

const (
	StatusNew      RowStatus = "new"
	StatusExisting RowStatus = "existing"
	StatusLoaded   RowStatus = "loaded"
	StatusError    RowStatus = "error"
)

var ErrEmptyInput = errors.New("no data rows found in input")

// Row is one parsed data line and its current status.
type Row struct {
	Line   int
	Values ParsedRow
	Status RowStatus
	Note   string
}

// Session holds one import from parsing until upload.
type Session struct {
	ID            string
	Target        ImportTargetSpec
	Rows          []Row
	HeaderSkipped bool
	Separator     rune
	InputHash     string
	SourceName    string
	CreatedAt     time.Time
	Result        *LoadResult
}

// LoadResult summarises one upload run.
type LoadResult struct {
	Success      bool
	Total        int
	Inserted     int
	Skipped      int
	Errors       int
	Merged       int
	ErrorDetails []string
	Message      string
}

// Fingerprint is the xxh3 hash of the raw input, used to spot repeated files.
func Fingerprint(text string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(text))
}

// NewSession looks up targetID and parses text into a fresh session.
func NewSession(targetID, text, sourceName string) (*Session, error) {
	target, err := Lookup(targetID)
	if err != nil {
		return nil, err
	}
	s := ParseText(text, target)
	if len(s.Rows) == 0 {
		return nil, ErrEmptyInput
	}
	s.ID = uuid.NewString()
	s.InputHash = Fingerprint(text)
	s.SourceName = sourceName
	s.CreatedAt = time.Now().UTC()
	return s, nil
}

// CountByStatus tallies rows per status.
func (s *Session) CountByStatus() map[RowStatus]int {
	out := map[RowStatus]int{}
	for _, r := range s.Rows {
		out[r.Status]++
	}
	return out
}

func (s *Session) setAll(status RowStatus, note string) {
	for i := range s.Rows {
		s.Rows[i].Status = status
		s.Rows[i].Note = note
	}
}

// Clone copies the session so the copy's row statuses and result can change
// without touching the original. Row values are shared; nothing rewrites them
// after parsing.
func (s *Session) Clone() *Session {
	c := *s
	c.Rows = append([]Row(nil), s.Rows...)
	if s.Result != nil {
		res := *s.Result
		res.ErrorDetails = append([]string(nil), s.Result.ErrorDetails...)
		c.Result = &res
	}
	return &c
}
