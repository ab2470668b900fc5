package settings

import (
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"wmsadmin/frontend/shared/html"
	"wmsadmin/infrastructure/importer"
)

func ImportSettingsPage(data PageData) templ.Component {
	return html.Page("Import settings", data.TopNav, func(w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>Import settings</h1>`)
		b.WriteString(html.Flash(data.Status, data.Error))
		b.WriteString(`<table><thead><tr><th>Target</th><th>Batch size</th><th>When the existence check fails</th><th></th></tr></thead><tbody>`)
		for _, t := range data.Targets {
			b.WriteString(`<tr><form method="post" action="/tasker/settings/import">`)
			b.WriteString(`<td>` + html.Esc(t.Label))
			if !t.Overridden {
				b.WriteString(` <small>(default)</small>`)
			}
			b.WriteString(`<input type="hidden" name="target_id" value="` + html.Esc(t.TargetID) + `"></td>`)
			b.WriteString(fmt.Sprintf(`<td><input type="number" name="batch_size" min="1" max="1000" value="%d"></td>`, t.BatchSize))
			b.WriteString(`<td><select name="fallback_policy">`)
			for _, p := range []importer.DedupFallbackPolicy{importer.FallbackAssumeNew, importer.FallbackMarkError} {
				selected := ""
				if string(p) == t.FallbackPolicy {
					selected = " selected"
				}
				b.WriteString(`<option value="` + string(p) + `"` + selected + `>` + fallbackLabel(p) + `</option>`)
			}
			b.WriteString(`</select></td><td><button type="submit">Save</button></td></form></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func fallbackLabel(p importer.DedupFallbackPolicy) string {
	if p == importer.FallbackMarkError {
		return "Block the upload"
	}
	return "Treat every row as new"
}
