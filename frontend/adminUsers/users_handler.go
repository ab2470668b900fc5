package adminusers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wmsadmin/frontend/login"
	"wmsadmin/frontend/shared/context"
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/cache"
	"wmsadmin/infrastructure/sqlite"
)

const usersPath = "/tasker/admin/users"

// UsersPageQueryHandler renders the admin users list page.
func UsersPageQueryHandler(db *sqlite.DB, auditSvc *audit.Service, rbacCache *cache.RbacRolesCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		data, err := LoadUsersPageData(r.Context(), db, auditSvc)
		if err != nil {
			slog.Error("admin users: failed to load data", slog.Any("err", err))
			http.Error(w, "failed to load users", http.StatusInternalServerError)
			return
		}

		data.TopNav = nav.BuildTopNavData(session)
		data.RoleCodes = rbacCache.CodesByRole()
		data.Status = r.URL.Query().Get("status")
		data.ErrorMessage = r.URL.Query().Get("error")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := UsersListPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render users page", http.StatusInternalServerError)
			return
		}
	}
}

func CreateUserCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, usersPath+"?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := strings.TrimSpace(r.FormValue("password"))
		role := strings.TrimSpace(r.FormValue("role"))

		if err := CreateUser(r.Context(), db, auditSvc, session.UserID, username, password, role); err != nil {
			// Validation and password policy messages are safe to show.
			if !isValidationError(err) {
				slog.Error("admin users: create failed", slog.String("username", username), slog.Any("err", err))
			}
			http.Redirect(w, r, usersPath+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, usersPath+"?status="+url.QueryEscape("user created"), http.StatusSeeOther)
	}
}

// UpdateUserRoleCommandHandler changes a role and evicts the user's cached
// sessions so the new permissions apply on their next request.
func UpdateUserRoleCommandHandler(db *sqlite.DB, auditSvc *audit.Service, sessionCache *cache.UserSessionCache, userCache *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, usersPath+"?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}
		userID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("user_id")), 10, 64)
		if err != nil || userID <= 0 {
			http.Redirect(w, r, usersPath+"?error="+url.QueryEscape("invalid user"), http.StatusSeeOther)
			return
		}
		if err := SetUserRole(r.Context(), db, auditSvc, session.UserID, userID, strings.TrimSpace(r.FormValue("role"))); err != nil {
			if !isValidationError(err) {
				slog.Error("admin users: role update failed", slog.Int64("user_id", userID), slog.Any("err", err))
			}
			http.Redirect(w, r, usersPath+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		userCache.DeleteByID(userID)
		if n := sessionCache.DeleteSessionsByUserID(userID); n > 0 {
			slog.Info("admin users: sessions evicted after role change", slog.Int64("user_id", userID), slog.Int("sessions", n))
		}
		http.Redirect(w, r, usersPath+"?status="+url.QueryEscape("role updated"), http.StatusSeeOther)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrUsernameRequired) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrUsernameExists) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrLastAdmin) ||
		errors.Is(err, login.ErrPasswordTooShort) ||
		errors.Is(err, login.ErrPasswordTooWeak)
}
