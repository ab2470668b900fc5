package adminusers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"

	"wmsadmin/frontend/login"
	"wmsadmin/infrastructure/argon"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/rbac"
	"wmsadmin/infrastructure/sqlite"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidRole      = errors.New("role must be admin, operator or viewer")
	ErrUsernameExists   = errors.New("username already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrLastAdmin        = errors.New("at least one admin is required")
)

func LoadUsersPageData(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service) (PageData, error) {
	users := make([]UserView, 0)
	var activity []audit.Entry
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if auditSvc != nil {
			var err error
			if activity, err = auditSvc.Recent(ctx, tx, activityLimit); err != nil {
				return err
			}
		}
		return tx.NewRaw(`
SELECT u.id, u.username, u.role,
       strftime('%Y-%m-%d', u.created_at) AS created_at,
       (SELECT COUNT(1) FROM import_runs ir WHERE ir.user_id = u.id) AS import_count
FROM users u
ORDER BY u.id ASC`).Scan(ctx, &users)
	})
	if err != nil {
		return PageData{}, err
	}
	return PageData{Users: users, Roles: rbac.Roles, Activity: activity}, nil
}

const activityLimit = 15

// CreateUser validates and stores a new user with an argon2id password hash.
func CreateUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, username, password, role string) error {
	in := NewUser{Username: username, Password: password, Role: role}.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	if err := login.ValidatePasswordPolicy(password); err != nil {
		return err
	}
	username, role = in.Username, in.Role
	hash, err := argon.CreateHash(password, argon.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO users (username, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`, username, hash, role, now, now)
		if err != nil {
			return err
		}
		if auditSvc == nil {
			return nil
		}
		id, _ := res.LastInsertId()
		return auditSvc.Write(ctx, tx, actorID, "user.create", "users", fmt.Sprint(id), nil, map[string]any{
			"username": username,
			"role":     role,
		})
	})
	if isUniqueViolation(err) {
		return ErrUsernameExists
	}
	return err
}

// SetUserRole changes the role of a user. The last admin cannot be demoted.
func SetUserRole(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID, userID int64, role string) error {
	if !rbac.ValidRole(role) {
		return ErrInvalidRole
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var current string
		err := tx.NewRaw(`SELECT role FROM users WHERE id = ?`, userID).Scan(ctx, &current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if current == role {
			return nil
		}
		if current == rbac.RoleAdmin {
			var admins int
			if err := tx.NewRaw(`SELECT COUNT(1) FROM users WHERE role = ?`, rbac.RoleAdmin).Scan(ctx, &admins); err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, role, userID); err != nil {
			return err
		}
		if auditSvc == nil {
			return nil
		}
		return auditSvc.Write(ctx, tx, actorID, "user.role", "users", fmt.Sprint(userID),
			map[string]any{"role": current}, map[string]any{"role": role})
	})
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
