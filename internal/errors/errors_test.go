package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/memora/internal/errors"
)

func TestAs(t *testing.T) {
	notFound := errors.NewNotFoundError("item", 42)
	wrapped := fmt.Errorf("grade: %w", notFound)

	got := errors.As(wrapped)
	assert.Same(t, notFound, got)
	assert.Equal(t, 404, got.Status)
	assert.Equal(t, "NOT_FOUND: item not found: 42", got.Error())

	plain := stderrors.New("boom")
	internal := errors.As(plain)
	assert.Equal(t, errors.ErrCodeInternal, internal.Code)
	assert.ErrorIs(t, internal, plain)
}

func TestHasCodeAndRetryable(t *testing.T) {
	cause := stderrors.New("database is locked")
	err := fmt.Errorf("next: %w", errors.NewUnavailableError(cause))

	assert.True(t, errors.HasCode(err, errors.ErrCodeUnavailable))
	assert.False(t, errors.HasCode(err, errors.ErrCodeNotFound))
	assert.True(t, errors.As(err).Retryable())
	assert.Equal(t, 503, errors.As(err).Status)
	assert.False(t, errors.NewValidationError("rating", "must be between 0 and 5").Retryable())
}
