package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetUserID(ctx))
	assert.False(t, HasRole(ctx, "operator"))

	ctx = WithUser(ctx, &UserContext{UserID: "storekeeper-7", Roles: []string{"operator"}})
	assert.Equal(t, "storekeeper-7", GetUserID(ctx))
	assert.True(t, HasRole(ctx, "operator"))
	assert.False(t, HasRole(ctx, "admin"))
}

func TestTraceContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetTrace(ctx))
	assert.Empty(t, GetRequestID(ctx))

	propagated := NewTraceContext("trace-from-gateway", "req-42")
	assert.Equal(t, "trace-from-gateway", propagated.TraceID)
	assert.Equal(t, "req-42", propagated.RequestID)

	fresh := NewTraceContext("", "")
	assert.NotEmpty(t, fresh.TraceID)
	assert.NotEmpty(t, fresh.RequestID)
	assert.NotEqual(t, fresh.TraceID, fresh.RequestID)

	ctx = WithTrace(ctx, propagated)
	assert.Same(t, propagated, GetTrace(ctx))
	assert.Equal(t, "req-42", GetRequestID(ctx))
}
