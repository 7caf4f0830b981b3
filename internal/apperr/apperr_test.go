package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid content: must not be blank", Validation("content", "must not be blank").Error())
	assert.Equal(t, `message "m9" not found`, NotFound("message", "m9").Error())
	assert.Equal(t, "invariant reply_order violated: reply precedes target",
		Invariant("reply_order", "reply precedes target").Error())
}

func TestClassificationThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("send message: %w", NotFound("member", "u1"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, "not_found", Kind(wrapped))

	forbidden := fmt.Errorf("toggle pin: %w", ErrForbidden)
	assert.True(t, IsForbidden(forbidden))
	assert.Equal(t, "forbidden", Kind(forbidden))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(Validation("title", "required")))
	assert.False(t, IsRetryable(NotFound("evidence", "e1")))
	assert.False(t, IsRetryable(Invariant("owner", "two owners")))
	assert.False(t, IsRetryable(ErrForbidden))
	assert.False(t, IsRetryable(fmt.Errorf("append: %w", context.Canceled)))
	assert.False(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(errors.New("connection reset")))
}

func TestKindInternal(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
	assert.Equal(t, "invariant", Kind(Invariant("x", "y")))
	assert.Equal(t, "validation", Kind(Validation("x", "y")))
}
