package layout

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"wmsadmin/frontend/shared/html"
)

func qty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func LayoutPage(data PageData) templ.Component {
	return html.Page("Layout", data.TopNav, func(w io.Writer) error {
		g := data.Grid
		var b strings.Builder
		b.WriteString(`<h1>Warehouse layout</h1>`)
		b.WriteString(`<p class="counters">Total quantity ` + qty(g.Total) + `</p>`)
		if len(g.Aisles) == 0 && len(g.Unassigned) == 0 {
			b.WriteString(`<p>No inventory lots loaded. <a href="/tasker/import?target=inventory_lots">Import lots</a></p>`)
		}

		for _, aisle := range g.Aisles {
			b.WriteString(`<section class="aisle"><h2>Aisle ` + html.Esc(aisle.Code) + ` <small>` + qty(aisle.Qty) + `</small></h2><div class="racks">`)
			for _, rack := range aisle.Racks {
				b.WriteString(`<div class="rack"><h3>` + html.Esc(aisle.Code+"-"+rack.Code) + `</h3><table>`)
				for _, cell := range rack.Levels {
					b.WriteString(fmt.Sprintf(`<tr><th>%s</th><td>%s</td><td>%d lots</td><td>%s</td></tr>`,
						html.Esc(cell.Level), qty(cell.Qty), cell.Lots, html.Esc(strings.Join(cell.Codes, ", "))))
				}
				b.WriteString(`</table></div>`)
			}
			b.WriteString(`</div></section>`)
		}

		if len(g.Unassigned) > 0 {
			b.WriteString(`<section class="aisle"><h2>` + UnassignedBucket + `</h2><table><thead><tr><th>Location</th><th>Code</th><th>Lot</th><th>Qty</th></tr></thead><tbody>`)
			for _, lot := range g.Unassigned {
				b.WriteString(`<tr><td>` + html.Esc(lot.Ubicacion) + `</td><td>` + html.Esc(lot.Codigo) + `</td><td>` + html.Esc(lot.Lote) + `</td><td>` + qty(lot.Qty) + `</td></tr>`)
			}
			b.WriteString(`</tbody></table></section>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
