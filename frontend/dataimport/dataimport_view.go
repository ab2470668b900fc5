package dataimport

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"wmsadmin/frontend/shared/html"
	"wmsadmin/infrastructure/importer"
)

func ImportPage(data PageData) templ.Component {
	return html.Page("Import", data.TopNav, func(w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>Bulk import</h1>`)
		b.WriteString(html.Flash(data.Status, data.Error))
		b.WriteString(`<form method="post" action="/tasker/import" enctype="multipart/form-data" class="card">`)
		b.WriteString(`<label>Target <select name="target" required>`)
		for _, t := range data.Targets {
			sel := ""
			if t.Selected {
				sel = " selected"
			}
			b.WriteString(`<option value="` + html.Esc(t.ID) + `"` + sel + `>` + html.Esc(t.Label) + `</option>`)
		}
		b.WriteString(`</select></label>`)
		b.WriteString(`<label>Paste rows (tab, semicolon or comma separated)<textarea name="text" rows="12"></textarea></label>`)
		b.WriteString(`<label>or choose a file <input type="file" name="file" accept=".csv,.tsv,.txt,.xlsx"></label>`)
		b.WriteString(`<button type="submit">Preview</button>`)
		b.WriteString(`</form>`)

		b.WriteString(`<h2>Templates</h2><ul>`)
		for _, t := range data.Targets {
			b.WriteString(`<li><a href="/tasker/import/templates/` + html.Esc(t.ID) + `.csv">` + html.Esc(t.Label) + `</a></li>`)
		}
		b.WriteString(`</ul>`)

		b.WriteString(`<h2>Recent imports</h2>`)
		if len(data.Runs) == 0 {
			b.WriteString(`<p>No imports yet.</p>`)
		} else {
			b.WriteString(`<table><thead><tr><th>When</th><th>User</th><th>Target</th><th>Source</th><th>Total</th><th>Inserted</th><th>Skipped</th><th>Errors</th></tr></thead><tbody>`)
			for _, run := range data.Runs {
				class := "row-loaded"
				if !run.Success {
					class = "row-error"
				}
				user := run.Username
				if user == "" {
					user = run.Source
				}
				b.WriteString(fmt.Sprintf(`<tr class="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>`,
					class, html.Esc(run.CreatedAt), html.Esc(user), html.Esc(run.TargetID), html.Esc(run.SourceName),
					run.TotalCount, run.InsertedCount, run.SkippedCount, run.ErrorCount))
			}
			b.WriteString(`</tbody></table>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func PreviewPage(data PreviewData) templ.Component {
	return html.Page("Import preview", data.TopNav, func(w io.Writer) error {
		s := data.Session
		var b strings.Builder
		b.WriteString(`<h1>` + html.Esc(s.Target.Label) + ` <small>` + html.Esc(s.SourceName) + `</small></h1>`)
		b.WriteString(html.Flash(data.Status, data.Error))
		b.WriteString(fmt.Sprintf(`<p class="counters">%d rows: %d new, %d existing, %d loaded, %d errors`,
			len(s.Rows), data.Counts[importer.StatusNew], data.Counts[importer.StatusExisting], data.Counts[importer.StatusLoaded], data.Counts[importer.StatusError]))
		if s.HeaderSkipped {
			b.WriteString(`. Header row skipped`)
		}
		b.WriteString(`.</p>`)

		if s.Result != nil && len(s.Result.ErrorDetails) > 0 {
			b.WriteString(`<ul class="error">`)
			for _, d := range s.Result.ErrorDetails {
				b.WriteString(`<li>` + html.Esc(d) + `</li>`)
			}
			b.WriteString(`</ul>`)
		}
		if data.CanUpload {
			b.WriteString(`<form method="post" action="/tasker/import/` + html.Esc(s.ID) + `/upload"><button type="submit">Upload ` + strconv.Itoa(data.Counts[importer.StatusNew]) + ` new rows</button></form>`)
		}
		b.WriteString(`<p><a href="/tasker/import?target=` + html.Esc(s.Target.ID) + `">New import</a></p>`)

		b.WriteString(`<table><thead><tr><th>Line</th><th>Status</th>`)
		for _, c := range s.Target.Columns {
			b.WriteString(`<th>` + html.Esc(c.Label) + `</th>`)
		}
		b.WriteString(`<th>Note</th></tr></thead><tbody>`)
		for _, row := range s.Rows {
			b.WriteString(fmt.Sprintf(`<tr class="row-%s"><td>%d</td><td>%s</td>`, row.Status, row.Line, row.Status))
			for _, c := range s.Target.Columns {
				b.WriteString(`<td>` + html.Esc(CellText(row.Values[c.Key])) + `</td>`)
			}
			b.WriteString(`<td>` + html.Esc(row.Note) + `</td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// CellText renders a parsed value for display.
func CellText(v any) string {
	return importer.FormatValue(v)
}
