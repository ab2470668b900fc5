package nav

import (
	"strings"

	"github.com/a-h/templ"

	"wmsadmin/models"
)

// Link is one entry of the top navigation bar.
type Link struct {
	Label string
	Href  string
	Code  string
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	Username string
	Role     string
	Links    []Link
}

var allLinks = []Link{
	{Label: "Import", Href: "/tasker/import", Code: "IMPORT_VIEW"},
	{Label: "Tables", Href: "/tasker/tables/sales_orders", Code: "TABLES_VIEW"},
	{Label: "Layout", Href: "/tasker/layout", Code: "LAYOUT_VIEW"},
	{Label: "Exports", Href: "/tasker/exports", Code: "EXPORTS_VIEW"},
	{Label: "Settings", Href: "/tasker/settings/import", Code: "SETTINGS_IMPORT_VIEW"},
	{Label: "Users", Href: "/tasker/admin/users", Code: "ADMIN_USERS_LIST_VIEW"},
	{Label: "Help", Href: "/tasker/help", Code: "HELP_VIEW"},
}

// BuildTopNavData keeps the links the session may open.
func BuildTopNavData(session models.Session) TopNavData {
	data := TopNavData{Username: session.User.Username, Role: session.User.Role}
	for _, l := range allLinks {
		if session.ScreenPermissions[l.Code] == 1 {
			data.Links = append(data.Links, l)
		}
	}
	return data
}

func (d TopNavData) HTML() string {
	var b strings.Builder
	b.WriteString(`<nav class="topnav"><span class="brand">WMS Admin</span>`)
	for _, l := range d.Links {
		b.WriteString(`<a href="` + templ.EscapeString(l.Href) + `">` + templ.EscapeString(l.Label) + `</a>`)
	}
	if d.Username != "" {
		b.WriteString(`<span class="user">` + templ.EscapeString(d.Username) + ` (` + templ.EscapeString(d.Role) + `)</span>`)
		b.WriteString(`<form method="post" action="/logout"><button type="submit">Logout</button></form>`)
	}
	b.WriteString(`</nav>`)
	return b.String()
}
