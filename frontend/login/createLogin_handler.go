package login

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"wmsadmin/infrastructure/cache"
	sessioncookie "wmsadmin/infrastructure/session"
	"wmsadmin/infrastructure/sqlite"
	"wmsadmin/models"
)

// HomePath is where a fresh session lands.
const HomePath = "/tasker/import"

type credentials struct {
	Username string
	Password string
}

func readCredentials(r *http.Request) (credentials, string) {
	if err := r.ParseForm(); err != nil {
		return credentials{}, "invalid form data"
	}
	c := credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: strings.TrimSpace(r.PostFormValue("password")),
	}
	if c.Username == "" || c.Password == "" {
		return c, "username and password are required"
	}
	return c, ""
}

func backToLogin(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// CreateLoginHandler checks credentials, then stores a session in the
// database and the cache before setting the cookie. A nil throttle disables
// lockouts.
func CreateLoginHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, throttle *Throttle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		creds, problem := readCredentials(r)
		if problem != "" {
			backToLogin(w, r, problem)
			return
		}

		key := throttleKey(r, creds.Username)
		if blocked, wait := throttle.Blocked(ctx, key); blocked {
			slog.Warn("login locked out", slog.String("username", creds.Username), slog.Duration("retry_in", wait))
			backToLogin(w, r, "too many failed attempts; try again in "+wait.String())
			return
		}

		user, err := authenticateUser(ctx, db, creds.Username, creds.Password)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			throttle.Fail(ctx, key)
			backToLogin(w, r, "invalid username or password")
			return
		case err != nil:
			slog.Error("authenticate user failed", slog.String("username", creds.Username), slog.Any("err", err))
			backToLogin(w, r, "authentication failed")
			return
		}
		throttle.Clear(ctx, key)

		session := newSession(user)
		if err := persistSession(ctx, db, session); err != nil {
			slog.Error("store session failed", slog.Int64("user_id", user.ID), slog.Any("err", err))
			backToLogin(w, r, "failed to create session")
			return
		}
		sessionCache.AddSession(session)
		userCache.Add(user.Username, user)

		slog.Info("signed in", slog.String("username", user.Username), slog.String("role", user.Role))
		http.SetCookie(w, sessioncookie.NewCookie(session.ID))
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	}
}

func newSession(user models.User) models.Session {
	return models.Session{
		ID:        newSessionToken(),
		UserID:    user.ID,
		User:      user,
		UserRoles: []string{user.Role},
		ExpiresAt: sessioncookie.DefaultExpiry(),
	}
}
