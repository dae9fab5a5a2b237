package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		name   string
		ctx    context.Context
		want   uuid.UUID
		wantOK bool
	}{
		{"set", WithUserID(context.Background(), id), id, true},
		{"missing", context.Background(), uuid.Nil, false},
		{"nil uuid", WithUserID(context.Background(), uuid.Nil), uuid.Nil, false},
		{"overwritten", WithUserID(WithUserID(context.Background(), uuid.New()), id), id, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := UserIDFromCtx(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserID_ForeignKeyIgnored(t *testing.T) {
	t.Parallel()

	// A plain string key with the same text must not collide.
	ctx := context.WithValue(context.Background(), "user_id", uuid.New()) //nolint:staticcheck
	_, ok := UserIDFromCtx(ctx)
	assert.False(t, ok)
}

func TestActorFromCtx(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ActorFromCtx(context.Background()))

	id := uuid.New()
	actor := ActorFromCtx(WithUserID(context.Background(), id))
	require.NotNil(t, actor)
	assert.Equal(t, id, *actor)
}

func TestUserRole(t *testing.T) {
	t.Parallel()

	assert.Empty(t, UserRoleFromCtx(context.Background()))

	ctx := WithUserRole(context.Background(), "MEMBRE_MLA")
	assert.Equal(t, "MEMBRE_MLA", UserRoleFromCtx(ctx))
	assert.Equal(t, "ADMIN", UserRoleFromCtx(WithUserRole(ctx, "ADMIN")))
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RequestIDFromCtx(context.Background()))
	assert.Equal(t, "req-42", RequestIDFromCtx(WithRequestID(context.Background(), "req-42")))
}
