package exports

import (
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"wmsadmin/frontend/shared/html"
)

func ExportsPage(data PageData) templ.Component {
	return html.Page("Exports", data.TopNav, func(w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>Exports</h1>`)
		b.WriteString(html.Flash(data.Status, data.Error))
		b.WriteString(`<ul class="card">`)
		for _, t := range data.Targets {
			b.WriteString(`<li><a href="/tasker/exports/` + html.Esc(t.ID) + `.csv">` + html.Esc(t.Label) + ` (CSV)</a></li>`)
		}
		b.WriteString(`</ul>`)

		b.WriteString(`<h2>Recent exports</h2>`)
		if len(data.Runs) == 0 {
			b.WriteString(`<p>No exports yet.</p>`)
		} else {
			b.WriteString(`<table><thead><tr><th>When</th><th>User</th><th>Export</th><th>Rows</th></tr></thead><tbody>`)
			for _, run := range data.Runs {
				b.WriteString(fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>`,
					html.Esc(run.CreatedAt), html.Esc(run.Username), html.Esc(run.ExportType), run.RowCount))
			}
			b.WriteString(`</tbody></table>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
