package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate user", ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"repo exists", ErrRepositoryExists, http.StatusBadRequest, "REPOSITORY_EXISTS"},
		{"repo missing", ErrRepositoryNotFound, http.StatusNotFound, "REPOSITORY_NOT_FOUND"},
		{"denied", ErrAccessDenied, http.StatusUnauthorized, "ACCESS_DENIED"},
		{"too large", ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"wrapped", fmt.Errorf("commit demo: %w", ErrNoFile), http.StatusBadRequest, "NO_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesUnknownErrors(t *testing.T) {
	got := MapErrorToHTTP(fmt.Errorf("dial tcp 10.0.0.3:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
	assert.Equal(t, "internal server error", got.Message)
	assert.Equal(t, ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}, got.ToErrorResponse())
}
