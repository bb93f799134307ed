// ABOUTME: Unit tests for authentication context functions
// ABOUTME: Tests Identity propagation through context.Context

package auth

import (
	"context"
	"testing"
)

func TestWithIdentity_FromContext(t *testing.T) {
	id := &Identity{UserID: "user-1", Email: "a@x.com"}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	if got == nil {
		t.Fatal("FromContext() returned nil")
	}
	if got.UserID != "user-1" || got.Email != "a@x.com" {
		t.Errorf("FromContext() = %+v, want %+v", got, id)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
}

func TestMustFromContext_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustFromContext() did not panic on empty context")
		}
	}()
	MustFromContext(context.Background())
}

func TestMustFromContext_Present(t *testing.T) {
	ctx := WithIdentity(context.Background(), &Identity{UserID: "user-2"})
	if got := MustFromContext(ctx); got.UserID != "user-2" {
		t.Errorf("MustFromContext().UserID = %q, want %q", got.UserID, "user-2")
	}
}
