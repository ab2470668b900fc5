package html

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"wmsadmin/frontend/shared/nav"
)

func RenderLayout(title, body string) string {
	return fmt.Sprintf("<!doctype html><html><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>%s</title><link rel=\"stylesheet\" href=\"/assets/app.css\"></head><body>%s%s</body></html>", templ.EscapeString(title), body, CSRFFormScript())
}

// Page wraps body in the layout with the top navigation.
func Page(title string, topNav nav.TopNavData, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!doctype html><html><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>"+templ.EscapeString(title)+"</title><link rel=\"stylesheet\" href=\"/assets/app.css\"></head><body>"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, topNav.HTML()+"<main>"); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>"+CSRFFormScript()+"</body></html>")
		return err
	})
}

// Flash renders the status or error banner of a redirect.
func Flash(status, errMsg string) string {
	out := ""
	if status != "" {
		out += `<p class="status">` + templ.EscapeString(status) + `</p>`
	}
	if errMsg != "" {
		out += `<p class="error">` + templ.EscapeString(errMsg) + `</p>`
	}
	return out
}

// Esc escapes text for HTML output.
func Esc(s string) string {
	return templ.EscapeString(s)
}
