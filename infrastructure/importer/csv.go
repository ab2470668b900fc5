package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"wmsadmin/infrastructure/backend"
)

// QuoteCSVRow renders fields as one comma separated line with every field
// double quoted. SplitCells reads it back unchanged.
func QuoteCSVRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// TemplateCSV is a header-only file listing the column labels of target.
func TemplateCSV(target ImportTargetSpec) string {
	labels := make([]string, len(target.Columns))
	for i, c := range target.Columns {
		labels[i] = c.Label
	}
	return QuoteCSVRow(labels) + "\n"
}

// FormatValue renders a parsed or stored value as plain text.
func FormatValue(v any) string {
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
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}

// RowFields returns the text of row[cols] in column order.
func RowFields(row backend.Row, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = FormatValue(row[c])
	}
	return out
}
