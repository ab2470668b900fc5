package adminusers

import (
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"wmsadmin/frontend/login"
	"wmsadmin/frontend/shared/html"
)

func roleOptions(roles []string, selected string) string {
	var b strings.Builder
	for _, role := range roles {
		sel := ""
		if role == selected {
			sel = " selected"
		}
		b.WriteString(`<option value="` + html.Esc(role) + `"` + sel + `>` + html.Esc(role) + `</option>`)
	}
	return b.String()
}

func UsersListPage(data PageData) templ.Component {
	return html.Page("Users", data.TopNav, func(w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>Users</h1>`)
		b.WriteString(html.Flash(data.Status, data.ErrorMessage))

		b.WriteString(`<form method="post" action="/tasker/admin/users" class="card"><h2>New user</h2>`)
		b.WriteString(`<label>Username <input name="username" required></label>`)
		b.WriteString(`<label>Password <input type="password" name="password" required minlength="12"></label>`)
		b.WriteString(`<p class="hint">` + html.Esc(login.PasswordRules) + `</p>`)
		b.WriteString(`<label>Role <select name="role">` + roleOptions(data.Roles, "viewer") + `</select></label>`)
		b.WriteString(`<button type="submit">Create</button></form>`)

		b.WriteString(`<table><thead><tr><th>ID</th><th>Username</th><th>Created</th><th>Imports</th><th>Role</th></tr></thead><tbody>`)
		for _, u := range data.Users {
			b.WriteString(fmt.Sprintf(`<tr><td>%d</td><td>%s</td><td>%s</td><td>%d</td><td>`, u.ID, html.Esc(u.Username), html.Esc(u.CreatedAt), u.ImportCount))
			b.WriteString(fmt.Sprintf(`<form method="post" action="/tasker/admin/users/role"><input type="hidden" name="user_id" value="%d">`, u.ID))
			b.WriteString(`<select name="role">` + roleOptions(data.Roles, u.Role) + `</select><button type="submit">Save</button></form></td></tr>`)
		}
		b.WriteString(`</tbody></table>`)

		b.WriteString(`<h2>Role permissions</h2><table><thead><tr><th>Role</th><th>Screens and actions</th></tr></thead><tbody>`)
		for _, role := range data.Roles {
			codes := data.RoleCodes[role]
			text := strings.Join(codes, ", ")
			if role == "admin" {
				text = "everything"
			}
			b.WriteString(`<tr><td>` + html.Esc(role) + `</td><td>` + html.Esc(text) + `</td></tr>`)
		}
		b.WriteString(`</tbody></table>`)

		b.WriteString(`<h2>Recent activity</h2>`)
		if len(data.Activity) == 0 {
			b.WriteString(`<p>No activity yet.</p>`)
		} else {
			b.WriteString(`<table><thead><tr><th>When</th><th>Who</th><th>Action</th><th>Entity</th></tr></thead><tbody>`)
			for _, e := range data.Activity {
				b.WriteString(`<tr><td>` + html.Esc(e.CreatedAt) + `</td><td>` + html.Esc(e.Actor) + `</td><td>` + html.Esc(e.Action) +
					`</td><td>` + html.Esc(e.EntityType) + ` ` + html.Esc(e.EntityID) + `</td></tr>`)
			}
			b.WriteString(`</tbody></table>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
