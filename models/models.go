package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User represents an authenticated app user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         string    `bun:"role,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Session is used by middleware and auth handlers.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID                string         `bun:"id,pk"`
	UserID            int64          `bun:"user_id,notnull"`
	User              User           `bun:"rel:belongs-to,join:user_id=id"`
	UserRoles         []string       `bun:"-"`
	ScreenPermissions map[string]int `bun:"-"`
	ExpiresAt         time.Time      `bun:"expires_at,notnull"`
	CreatedAt         time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ImportRun records one completed upload of an import session.
type ImportRun struct {
	bun.BaseModel `bun:"table:import_runs,alias:ir"`

	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        *int64    `bun:"user_id"`
	TargetID      string    `bun:"target_id,notnull"`
	Source        string    `bun:"source,notnull"`
	SourceName    string    `bun:"source_name"`
	InputHash     string    `bun:"input_hash,notnull"`
	TotalCount    int       `bun:"total_count,notnull"`
	InsertedCount int       `bun:"inserted_count,notnull"`
	SkippedCount  int       `bun:"skipped_count,notnull"`
	ErrorCount    int       `bun:"error_count,notnull"`
	Success       bool      `bun:"success,notnull"`
	Message       string    `bun:"message"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ImportSetting overrides uploader tuning for one import target.
type ImportSetting struct {
	bun.BaseModel `bun:"table:import_settings,alias:ims"`

	TargetID       string    `bun:"target_id,pk"`
	BatchSize      int       `bun:"batch_size,notnull"`
	FallbackPolicy string    `bun:"fallback_policy,notnull"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
