package login

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"wmsadmin/frontend/shared/html"
)

func GetLoginScreen(status, errorMessage string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := `<main class="login"><h1>WMS Admin</h1>` + html.Flash(status, errorMessage) +
			`<form method="post" action="/login" class="card">` +
			`<label>Username <input name="username" autocomplete="username" required autofocus></label>` +
			`<label>Password <input type="password" name="password" autocomplete="current-password" required></label>` +
			`<button type="submit">Sign in</button></form></main>`
		_, err := io.WriteString(w, html.RenderLayout("Sign in", body))
		return err
	})
}
