package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dayMonthYear = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)

// genericLayouts are tried in order once the day/month/year form does not match.
var genericLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006.01.02",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
}

// NormalizeDate returns raw as a YYYY-MM-DD string, or nil when it is not a real date.
func NormalizeDate(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if len(s) < 6 || !strings.ContainsAny(s, "0123456789") {
		return nil
	}

	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date rolls 30/02 over into March; reject anything that moved.
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			return nil
		}
		out := t.Format("2006-01-02")
		return &out
	}

	for _, layout := range genericLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		out := t.UTC().Format("2006-01-02")
		return &out
	}
	return nil
}
