package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_UnwrapAndDetails(t *testing.T) {
	cause := errors.New("boom")
	err := NewInternal(cause).WithDetail("request_id", "r-1")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "r-1", err.Details["request_id"])
	assert.Equal(t, "INTERNAL_ERROR: Internal server error (caused by: boom)", err.Error())
}

func TestHelpers_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("delete article: %w", NewNotFound("article", 7))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}

func TestNewFieldValidation(t *testing.T) {
	err := NewFieldValidation("title", "must be at most 80 characters")

	assert.True(t, IsValidation(err))
	assert.Equal(t, "title", err.Details["field"])
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}
