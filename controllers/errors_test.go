package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/queue-app/services"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(services.ErrTokenNotFound))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("%w: id 4", services.ErrTableNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusFor(services.NewValidationError("bad")))
	assert.Equal(t, http.StatusConflict, statusFor(services.ErrInvalidState))
	assert.Equal(t, http.StatusConflict, statusFor(services.ErrDuplicateUser))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(fmt.Errorf("%w: timeout", services.ErrLockNotAcquired)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("disk full")))
}
