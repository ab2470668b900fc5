package tables

import (
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"wmsadmin/frontend/shared/html"
)

func TablePage(data PageData) templ.Component {
	return html.Page(data.Target.Label, data.TopNav, func(w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<nav class="tabs">`)
		for _, t := range data.Tabs {
			class := ""
			if t.Active {
				class = ` class="active"`
			}
			b.WriteString(`<a` + class + ` href="/tasker/tables/` + html.Esc(t.ID) + `">` + html.Esc(t.Label) + `</a>`)
		}
		b.WriteString(`</nav>`)
		b.WriteString(`<h1>` + html.Esc(data.Target.Label) + `</h1>`)
		b.WriteString(html.Flash(data.Status, data.Error))
		b.WriteString(fmt.Sprintf(`<p class="counters">%d rows</p>`, len(data.Rows)))

		if len(data.Rows) == 0 {
			b.WriteString(`<p>No rows yet. <a href="/tasker/import?target=` + html.Esc(data.Target.ID) + `">Import data</a></p>`)
			_, err := io.WriteString(w, b.String())
			return err
		}

		if data.CanDelete {
			b.WriteString(`<form method="post" action="/tasker/tables/` + html.Esc(data.Target.ID) + `/delete" data-confirm="Delete the selected rows?">`)
		}
		b.WriteString(`<table><thead><tr>`)
		if data.CanDelete {
			b.WriteString(`<th></th>`)
		}
		for _, c := range data.Columns {
			b.WriteString(`<th>` + html.Esc(c) + `</th>`)
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range data.Rows {
			b.WriteString(`<tr>`)
			if data.CanDelete {
				b.WriteString(`<td><input type="checkbox" name="id" value="` + html.Esc(row.ID) + `"></td>`)
			}
			for _, cell := range row.Cells {
				b.WriteString(`<td>` + html.Esc(cell) + `</td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)
		if data.CanDelete {
			b.WriteString(`<button type="submit" class="danger">Delete selected</button></form>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
