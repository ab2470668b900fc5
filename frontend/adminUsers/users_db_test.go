package adminusers

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"wmsadmin/infrastructure/argon"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/sqlite"
)

func openAdminUsersTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "admin-users-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func userID(t *testing.T, db *sqlite.DB, username string) int64 {
	t.Helper()
	var id int64
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT id FROM users WHERE username = ?`, username).Scan(ctx, &id)
	})
	if err != nil {
		t.Fatalf("load user id: %v", err)
	}
	return id
}

func TestCreateUser_HappyPathStoresHashAndRole(t *testing.T) {
	db := openAdminUsersTestDB(t)

	if err := CreateUser(context.Background(), db, audit.NewService(), 0, "operator2", "Operator123!Strong", "operator"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	var role string
	var passwordHash string
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT role, password_hash FROM users WHERE username = ?`, "operator2").Scan(ctx, &role, &passwordHash)
	})
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if role != "operator" {
		t.Fatalf("expected role=operator, got %s", role)
	}
	if passwordHash == "Operator123!Strong" {
		t.Fatalf("expected password to be hashed")
	}
	ok, err := argon.ComparePasswordAndHash("Operator123!Strong", passwordHash)
	if err != nil {
		t.Fatalf("verify hash: %v", err)
	}
	if !ok {
		t.Fatalf("expected stored hash to match password")
	}

	var audits int
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(1) FROM audit_logs WHERE action = 'user.create'`).Scan(ctx, &audits)
	})
	if err != nil || audits != 1 {
		t.Fatalf("expected one audit record, got %d (%v)", audits, err)
	}
}

func TestCreateUser_DuplicateUsernameRejectedCaseInsensitive(t *testing.T) {
	db := openAdminUsersTestDB(t)

	if err := CreateUser(context.Background(), db, nil, 0, "CaseUser", "Case123!Password", "viewer"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	err := CreateUser(context.Background(), db, nil, 0, "caseuser", "Case456!Password", "admin")
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestCreateUser_InvalidRoleRejected(t *testing.T) {
	db := openAdminUsersTestDB(t)

	err := CreateUser(context.Background(), db, nil, 0, "scan", "Scan123!Password", "scanner")
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestCreateUser_PasswordPolicyEnforced(t *testing.T) {
	db := openAdminUsersTestDB(t)

	err := CreateUser(context.Background(), db, nil, 0, "weakuser", "abcd", "viewer")
	if err == nil {
		t.Fatalf("expected password policy error")
	}
	if !strings.Contains(err.Error(), "password must") {
		t.Fatalf("expected password policy message, got %v", err)
	}
	if !isValidationError(err) {
		t.Fatalf("policy errors should be shown to the admin")
	}
}

func TestSetUserRole_KeepsOneAdmin(t *testing.T) {
	db := openAdminUsersTestDB(t)
	ctx := context.Background()
	auditSvc := audit.NewService()

	if err := CreateUser(ctx, db, nil, 0, "boss", "Boss123!Password", "admin"); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if err := CreateUser(ctx, db, nil, 0, "clerk", "Clerk123!Password", "viewer"); err != nil {
		t.Fatalf("create viewer: %v", err)
	}
	boss := userID(t, db, "boss")
	clerk := userID(t, db, "clerk")

	if err := SetUserRole(ctx, db, auditSvc, boss, boss, "viewer"); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
	if err := SetUserRole(ctx, db, auditSvc, boss, clerk, "admin"); err != nil {
		t.Fatalf("promote clerk: %v", err)
	}
	if err := SetUserRole(ctx, db, auditSvc, boss, boss, "operator"); err != nil {
		t.Fatalf("demote boss once another admin exists: %v", err)
	}
	if err := SetUserRole(ctx, db, auditSvc, boss, 999, "viewer"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := SetUserRole(ctx, db, auditSvc, boss, clerk, "root"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	data, err := LoadUsersPageData(ctx, db, audit.NewService())
	if err != nil {
		t.Fatalf("load page data: %v", err)
	}
	if len(data.Users) != 2 || data.Users[0].Role != "operator" || data.Users[1].Role != "admin" {
		t.Fatalf("unexpected users %+v", data.Users)
	}
	if len(data.Roles) != 3 {
		t.Fatalf("expected 3 roles, got %v", data.Roles)
	}
	if len(data.Activity) == 0 || data.Activity[0].Action != "user.role" {
		t.Fatalf("expected role change at the top of activity, got %+v", data.Activity)
	}
}

func TestNewUserValidate(t *testing.T) {
	tests := []struct {
		name string
		in   NewUser
		want error
	}{
		{name: "ok", in: NewUser{Username: "almacen.norte", Password: "x", Role: "viewer"}},
		{name: "blank username", in: NewUser{Username: "  ", Password: "x", Role: "viewer"}, want: ErrUsernameRequired},
		{name: "spaces inside", in: NewUser{Username: "jefe almacen", Password: "x", Role: "viewer"}, want: ErrUsernameInvalid},
		{name: "too long", in: NewUser{Username: strings.Repeat("a", 65), Password: "x", Role: "viewer"}, want: ErrUsernameInvalid},
		{name: "blank password", in: NewUser{Username: "ops", Password: "   ", Role: "viewer"}, want: ErrPasswordRequired},
		{name: "unknown role", in: NewUser{Username: "ops", Password: "x", Role: "scanner"}, want: ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Normalize().Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
