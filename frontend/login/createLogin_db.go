package login

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/argon"
	"wmsadmin/infrastructure/rbac"
	"wmsadmin/infrastructure/sqlite"
	"wmsadmin/models"
)

// findUserByUsername relies on the NOCASE collation of users.username.
func findUserByUsername(ctx context.Context, tx bun.Tx, username string) (models.User, error) {
	var user models.User
	err := tx.NewSelect().Model(&user).Where("username = ?", strings.TrimSpace(username)).Limit(1).Scan(ctx)
	return user, err
}

// dummyHash is compared against when the username is unknown, so a miss
// costs as much as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, _ := argon.CreateHash("unknown-user-placeholder", argon.DefaultParams)
	return h
})

// authenticateUser returns sql.ErrNoRows for an unknown user and for a wrong
// password alike.
func authenticateUser(ctx context.Context, db *sqlite.DB, username, password string) (models.User, error) {
	var user models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = findUserByUsername(ctx, tx, username)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		_, _ = argon.ComparePasswordAndHash(password, dummyHash())
		return models.User{}, sql.ErrNoRows
	}
	if err != nil {
		return models.User{}, err
	}

	ok, err := argon.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("user %d: %w", user.ID, err)
	}
	if !ok {
		return models.User{}, sql.ErrNoRows
	}

	if argon.NeedsRehash(user.PasswordHash, argon.DefaultParams) {
		if err := rehashPassword(ctx, db, user.ID, password); err != nil {
			slog.Warn("password rehash failed", slog.String("username", user.Username), slog.Any("err", err))
		}
	}
	return user, nil
}

// rehashPassword upgrades a stored hash to the current argon2 parameters
// while the plain password is at hand.
func rehashPassword(ctx context.Context, db *sqlite.DB, userID int64, password string) error {
	hash, err := argon.CreateHash(password, argon.DefaultParams)
	if err != nil {
		return err
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hash, userID)
		return err
	})
}

func persistSession(ctx context.Context, db *sqlite.DB, session models.Session) error {
	row := &models.Session{ID: session.ID, UserID: session.UserID, ExpiresAt: session.ExpiresAt}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		return nil
	})
}

func DeleteSessionByToken(ctx context.Context, db *sqlite.DB, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("id = ?", token).Exec(ctx)
		return err
	})
}

// DeleteExpiredSessions removes stored sessions past their expiry.
func DeleteExpiredSessions(ctx context.Context, db *sqlite.DB) (int64, error) {
	var n int64
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.Session)(nil)).Where("expires_at < ?", time.Now().UTC()).Exec(ctx)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// LoadSessionByToken reads a stored session with its user. Permissions are
// left empty for the auth middleware to fill from the role.
func LoadSessionByToken(ctx context.Context, db *sqlite.DB, token string) (models.Session, error) {
	var session models.Session
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&session).Relation("User").Where("s.id = ?", token).Limit(1).Scan(ctx)
	})
	if err != nil {
		return models.Session{}, err
	}
	if session.Expired() {
		if err := DeleteSessionByToken(ctx, db, token); err != nil {
			slog.Warn("delete expired session failed", slog.Any("err", err))
		}
		return models.Session{}, sql.ErrNoRows
	}
	session.UserRoles = []string{session.User.Role}
	return session, nil
}

// UpsertUserPasswordHash creates the user or resets its password and role.
func UpsertUserPasswordHash(ctx context.Context, db *sqlite.DB, username, role, rawPassword string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if !rbac.ValidRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	rawPassword = strings.TrimSpace(rawPassword)
	if rawPassword == "" {
		return errors.New("password is required")
	}
	if err := ValidatePasswordPolicy(rawPassword); err != nil {
		return err
	}
	hash, err := argon.CreateHash(rawPassword, argon.DefaultParams)
	if err != nil {
		return err
	}

	now := time.Now()
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO users (username, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(username) DO UPDATE SET
  password_hash = excluded.password_hash,
  role = excluded.role,
  updated_at = excluded.updated_at`, username, hash, role, now, now)
		return err
	})
}
