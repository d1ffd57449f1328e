package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("goal", "abc123")
	assert.Equal(t, `goal "abc123" not found`, err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrDuplicate))

	assert.Equal(t, "goal not found", NotFound("goal", "").Error())
}

func TestKindOfWrapped(t *testing.T) {
	base := UsageLimitExceeded("no shields left")
	wrapped := fmt.Errorf("apply shield: %w", base)

	assert.Equal(t, KindUsageLimitExceeded, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrUsageLimitExceeded))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("gateway timeout")
	err := UpstreamPayment(cause)

	assert.Equal(t, "payment provider error: gateway timeout", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUpstreamPayment, KindOf(err))
}
