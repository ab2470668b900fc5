package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeHeader lower-cases, folds accents and keeps only [a-z0-9].
func normalizeHeader(s string) string {
	s = strings.ToLower(foldDiacritics(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsHeaderRow reports whether any cell names one of the columns.
func IsHeaderRow(cells []string, columns []ColumnSpec) bool {
	names := make(map[string]struct{}, len(columns)*2)
	for _, c := range columns {
		if n := normalizeHeader(c.Label); n != "" {
			names[n] = struct{}{}
		}
		if n := normalizeHeader(c.Key); n != "" {
			names[n] = struct{}{}
		}
	}
	for _, cell := range cells {
		n := normalizeHeader(cell)
		if n == "" {
			continue
		}
		if _, ok := names[n]; ok {
			return true
		}
	}
	return false
}
