package login

import (
	"net/http"

	sessioncookie "wmsadmin/infrastructure/session"
)

// GetLoginScreenHandler renders the login screen. A browser that still holds
// a session cookie goes through / so a live session lands on the home page.
func GetLoginScreenHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if c, err := r.Cookie(sessioncookie.CookieName); err == nil && c.Value != "" && q.Get("error") == "" && q.Get("status") == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := GetLoginScreen(q.Get("status"), q.Get("error")).Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render login screen", http.StatusInternalServerError)
		return
	}
}
