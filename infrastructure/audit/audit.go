package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"wmsadmin/models"
)

// SystemActor is recorded for changes no signed-in user made, such as
// drop-folder imports.
const SystemActor int64 = 0

// Service writes audit records inside the caller transaction.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Write(ctx context.Context, tx bun.Tx, userID int64, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return fmt.Errorf("audit %s before: %w", action, err)
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return fmt.Errorf("audit %s after: %w", action, err)
	}
	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}
	_, err = tx.NewInsert().Model(log).Exec(ctx)
	return err
}

// Entry is an audit record joined with its actor.
type Entry struct {
	ID         int64  `bun:"id"`
	Actor      string `bun:"actor"`
	Action     string `bun:"action"`
	EntityType string `bun:"entity_type"`
	EntityID   string `bun:"entity_id"`
	AfterJSON  string `bun:"after_json"`
	CreatedAt  string `bun:"created_at"`
}

// Recent returns the newest audit entries. System changes carry actor "system".
func (s *Service) Recent(ctx context.Context, tx bun.Tx, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries := make([]Entry, 0, limit)
	err := tx.NewRaw(`
SELECT al.id,
       COALESCE(u.username, 'system') AS actor,
       al.action,
       al.entity_type,
       al.entity_id,
       COALESCE(al.after_json, '') AS after_json,
       strftime('%Y-%m-%d %H:%M', al.created_at) AS created_at
FROM audit_logs al
LEFT JOIN users u ON u.id = al.user_id
ORDER BY al.id DESC
LIMIT ?`, limit).Scan(ctx, &entries)
	return entries, err
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
