package help

import (
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"wmsadmin/frontend/shared/html"
)

func HelpPage(data PageData) templ.Component {
	return html.Page("Help", data.TopNav, func(w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>Help</h1>`)
		if data.CanImport {
			b.WriteString(`<h2>Importing</h2><ol>`)
			b.WriteString(`<li>Pick a target on the Import page.</li>`)
			b.WriteString(`<li>Paste rows copied from a spreadsheet, or choose a .csv, .tsv, .txt or .xlsx file. Tab, semicolon and comma separators are detected.</li>`)
			b.WriteString(`<li>A first row matching the column names is skipped. Cells are read left to right in the order listed below.</li>`)
			b.WriteString(`<li>The preview marks rows already stored as existing. Only new rows are uploaded.</li>`)
			b.WriteString(`</ol>`)
			b.WriteString(`<p>Dates may be written dd/mm/yyyy, dd-mm-yy or yyyy-mm-dd. Numbers accept a comma as decimal separator.</p>`)
		} else {
			b.WriteString(`<p>Your role can browse tables, the layout and exports. Ask an administrator for import access.</p>`)
		}

		b.WriteString(`<h2>Targets</h2>`)
		for _, t := range data.Targets {
			b.WriteString(`<h3>` + html.Esc(t.Label) + ` <small>` + html.Esc(t.ID) + `</small></h3>`)
			b.WriteString(`<table><thead><tr><th>#</th><th>Column</th><th>Type</th><th></th></tr></thead><tbody>`)
			for i, c := range t.Columns {
				req := ""
				if c.Required {
					req = "required"
				}
				b.WriteString(`<tr><td>` + strconv.Itoa(i+1) + `</td><td>` + html.Esc(c.Label) + `</td><td>` + html.Esc(string(c.Type)) + `</td><td>` + req + `</td></tr>`)
			}
			b.WriteString(`</tbody></table>`)
			switch {
			case t.AppendOnly:
				b.WriteString(`<p>Every upload appends rows.</p>`)
			case len(t.UniqueKey) > 0:
				b.WriteString(`<p>Rows are matched on ` + html.Esc(strings.Join(t.UniqueKey, " + ")) + `.</p>`)
			}
		}

		if data.IsAdmin {
			b.WriteString(`<h2>Administration</h2><p>Batch size and the behaviour when the duplicate check fails can be set per target under Settings. Files named <code>target__name.csv</code> placed in the drop folder are imported automatically.</p>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
