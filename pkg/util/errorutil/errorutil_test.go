package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainErrorUnwrapsWrapped(t *testing.T) {
	base := NewValidationError("not a ticket channel", nil)
	wrapped := fmt.Errorf("close ticket: %w", base)

	de := ToDomainError(wrapped)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.False(t, IsRetryable(wrapped))
}

func TestToDomainErrorDefaultsToInternal(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, de.Code)
	assert.True(t, de.Retryable())
	assert.Nil(t, ToDomainError(nil))
}

func TestPersistenceAndProvisioningAreRetryable(t *testing.T) {
	cause := errors.New("disk full")
	err := NewPersistenceError("allocate ticket", cause)
	assert.True(t, IsRetryable(err))
	assert.True(t, HasCode(err, CodePersistence))
	assert.ErrorIs(t, err, cause)

	err = NewProvisioningError("create channel", cause, map[string]any{"ticket_id": int64(3)})
	assert.True(t, HasCode(err, CodeProvisioning))
	assert.Equal(t, "create channel failed: disk full", err.Error())
	assert.False(t, HasCode(nil, CodeProvisioning))
}
