package login

import (
	"log/slog"
	"net/http"

	"wmsadmin/infrastructure/cache"
	sessioncookie "wmsadmin/infrastructure/session"
	"wmsadmin/infrastructure/sqlite"
)

const signedOutPath = "/login?status=signed+out"

// LogoutHandler ends the session named by the cookie, if any. The cookie is
// cleared either way.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer http.Redirect(w, r, signedOutPath, http.StatusSeeOther)
		http.SetCookie(w, sessioncookie.ClearCookie())

		cookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || cookie.Value == "" {
			return
		}
		token := cookie.Value
		if s, ok := sessionCache.FindSessionBySessionToken(token); ok {
			slog.Info("signed out", slog.String("username", s.User.Username))
		}
		sessionCache.DeleteSessionBySessionToken(token)
		if err := DeleteSessionByToken(r.Context(), db, token); err != nil {
			slog.Error("logout: delete session failed", slog.Any("err", err))
		}
	}
}
