package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("get 7: %w", ErrProductNotFound), http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"bad id", ErrInvalidProductID, http.StatusBadRequest, "INVALID_PRODUCT_ID"},
		{"validation", ErrInvalidPrice, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"referenced", ErrProductReferenced, http.StatusBadRequest, "PRODUCT_REFERENCED"},
		{"duplicate user", ErrUsernameTaken, http.StatusBadRequest, "USERNAME_TAKEN"},
		{"login", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"no token", ErrTokenRequired, http.StatusUnauthorized, "TOKEN_REQUIRED"},
		{"bad token", fmt.Errorf("%w: expired", ErrInvalidToken), http.StatusForbidden, "INVALID_TOKEN"},
		{"too large", ErrFileTooLarge, http.StatusBadRequest, "FILE_TOO_LARGE"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, got.StatusCode)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestMapErrorKeepsWrappedDetail(t *testing.T) {
	got := MapErrorToHTTP(fmt.Errorf("%w: application/x-msdownload", ErrFileTypeNotAllowed))
	assert.Equal(t, "file type is not allowed: application/x-msdownload", got.Message)

	// internal details never leak
	got = MapErrorToHTTP(errors.New("dial tcp 10.0.0.3:3306: refused"))
	assert.Equal(t, "internal server error", got.Message)
}

func TestMapErrorPassesHTTPErrorThrough(t *testing.T) {
	custom := NewHTTPError(http.StatusTeapot, "short and stout", "TEAPOT")
	assert.Same(t, custom, MapErrorToHTTP(fmt.Errorf("wrapped: %w", custom)))
	assert.Equal(t, ErrorResponse{Error: "short and stout", Code: "TEAPOT"}, custom.ToErrorResponse())
}
