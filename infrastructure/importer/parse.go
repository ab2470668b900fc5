package importer

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedRow maps column keys to string, float64 or *string (ISO date or nil).
type ParsedRow map[string]any

// DetectSeparator picks the cell separator from the first line.
func DetectSeparator(firstLine string) rune {
	switch {
	case strings.ContainsRune(firstLine, '\t'):
		return '\t'
	case strings.ContainsRune(firstLine, ';'):
		return ';'
	default:
		return ','
	}
}

type sourceLine struct {
	number int
	text   string
}

func splitLines(text string) []sourceLine {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []sourceLine
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, sourceLine{number: i + 1, text: line})
	}
	return out
}

// trimCell strips surrounding blanks. Tab separated input only trims spaces,
// so a leading tab stays a cell boundary.
func trimCell(cell string, sep rune) string {
	if sep == '\t' {
		return strings.Trim(cell, " ")
	}
	return strings.TrimSpace(cell)
}

// SplitCells splits one line by sep. Double quoted cells may contain the
// separator and "" stands for a literal quote.
func SplitCells(line string, sep rune) []string {
	var (
		cells   []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quoted && r == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
				continue
			}
			quoted = false
		case quoted:
			cur.WriteRune(r)
		case r == '"' && !started && strings.TrimSpace(cur.String()) == "":
			cur.Reset()
			quoted = true
			started = true
		case r == sep:
			cells = append(cells, trimCell(cur.String(), sep))
			cur.Reset()
			started = false
		default:
			cur.WriteRune(r)
			if r != ' ' {
				started = true
			}
		}
	}
	cells = append(cells, trimCell(cur.String(), sep))
	return cells
}

var leadingFloat = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// ParseNumber keeps digits, dots, commas and minus signs, turns commas into
// dots and reads the longest leading float. Anything unreadable is 0.
func ParseNumber(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	m := leadingFloat.FindString(b.String())
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

func convertCell(raw string, col ColumnSpec) any {
	switch col.Type {
	case TypeNumber:
		return ParseNumber(raw)
	case TypeDate:
		return NormalizeDate(raw)
	default:
		return strings.TrimSpace(raw)
	}
}

// ParseText turns raw tabular text into a session of typed rows for target.
// Rows are all tagged new; the dedup checker refines them.
func ParseText(text string, target ImportTargetSpec) *Session {
	s := &Session{Target: target, Separator: ','}
	lines := splitLines(text)
	if len(lines) == 0 {
		return s
	}
	s.Separator = DetectSeparator(lines[0].text)

	for i, line := range lines {
		cells := SplitCells(line.text, s.Separator)
		if i == 0 && IsHeaderRow(cells, target.Columns) {
			s.HeaderSkipped = true
			continue
		}
		values := make(ParsedRow, len(target.Columns))
		for ci, col := range target.Columns {
			raw := ""
			if ci < len(cells) {
				raw = cells[ci]
			}
			values[col.Key] = convertCell(raw, col)
		}
		if !KeepRow(values, target.Columns) {
			continue
		}
		s.Rows = append(s.Rows, Row{Line: line.number, Values: values, Status: StatusNew})
	}
	return s
}
