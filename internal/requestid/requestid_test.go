package requestid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	ctx, id := New(context.Background())
	assert.NotEmpty(t, id)
	assert.Equal(t, id, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	id := FromContext(context.Background())
	assert.NotEmpty(t, id) // generates new UUID
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-123")
	assert.Equal(t, "test-123", FromContext(ctx))
}

func TestAccept(t *testing.T) {
	ctx, id := Accept(context.Background(), "upstream-1")
	assert.Equal(t, "upstream-1", id)
	assert.Equal(t, "upstream-1", FromContext(ctx))

	_, id = Accept(context.Background(), "")
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "upstream-1", id)
}
