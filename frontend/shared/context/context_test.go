package context

import (
	"context"
	"testing"

	"wmsadmin/models"
)

func TestUserIDFromContext(t *testing.T) {
	if id := UserIDFromContext(context.Background()); id != nil {
		t.Fatalf("expected nil without session, got %d", *id)
	}
	ctx := NewContextWithSession(context.Background(), models.Session{UserID: 7})
	id := UserIDFromContext(ctx)
	if id == nil || *id != 7 {
		t.Fatalf("expected user 7, got %v", id)
	}
}

func TestCan(t *testing.T) {
	ctx := NewContextWithSession(context.Background(), models.Session{
		ScreenPermissions: map[string]int{"TABLES_DELETE": 1},
	})
	if !Can(ctx, "TABLES_DELETE") {
		t.Fatal("expected TABLES_DELETE to be granted")
	}
	if Can(ctx, "IMPORT_UPLOAD") {
		t.Fatal("IMPORT_UPLOAD should not be granted")
	}
	if Can(context.Background(), "TABLES_DELETE") {
		t.Fatal("no session must grant nothing")
	}
}
