package context

import (
	"context"

	"wmsadmin/models"
)

type sessionKey struct{}

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// UserIDFromContext returns the signed-in user id, or nil when the request
// carries no session.
func UserIDFromContext(ctx context.Context) *int64 {
	s, ok := GetSessionFromContext(ctx)
	if !ok || s.UserID <= 0 {
		return nil
	}
	id := s.UserID
	return &id
}

// Can reports whether the session grants the given route code.
func Can(ctx context.Context, code string) bool {
	s, ok := GetSessionFromContext(ctx)
	if !ok {
		return false
	}
	return s.ScreenPermissions[code] == 1
}
