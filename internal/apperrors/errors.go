package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrProductNotFound is returned when a product row does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProductID is returned when the path id is not a positive integer.
	ErrInvalidProductID = errors.New("invalid product id")
	// ErrNameRequired is returned when a product has no name after trimming.
	ErrNameRequired = errors.New("name is required")
	// ErrNameTooLong is returned when a product name exceeds 100 characters.
	ErrNameTooLong = errors.New("name must be at most 100 characters")
	// ErrInvalidPrice is returned when price is negative or not a number.
	ErrInvalidPrice = errors.New("invalid price value")
	// ErrInvalidStock is returned when stock is negative.
	ErrInvalidStock = errors.New("invalid stock value")
	// ErrProductReferenced is returned when a delete violates a foreign key.
	ErrProductReferenced = errors.New("cannot delete product: referenced by other records")
	// ErrInvalidRequest is returned when a request body cannot be decoded.
	ErrInvalidRequest = errors.New("invalid request body")

	// ErrMissingCredentials is returned when username or password is absent.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username exists")
	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenRequired is returned when a protected route has no bearer token.
	ErrTokenRequired = errors.New("access token required")
	// ErrInvalidToken is returned when a bearer token is malformed, forged or expired.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNoFile is returned when an upload request carries no file part.
	ErrNoFile = errors.New("no file uploaded")
	// ErrFileTooLarge is returned when an upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file too large (max 10MB)")
	// ErrFileTypeNotAllowed is returned when an upload's MIME type is not allow-listed.
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
	// ErrInvalidFilename is returned when a delete names no file or escapes the upload root.
	ErrInvalidFilename = errors.New("filename required")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors keep
// their full message so details like the rejected MIME type reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, ErrProductNotFound.Error(), "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrInvalidProductID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_PRODUCT_ID")
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNameTooLong),
		errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidStock):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidRequest):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
	case errors.Is(err, ErrProductReferenced):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PRODUCT_REFERENCED")
	case errors.Is(err, ErrMissingCredentials):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MISSING_CREDENTIALS")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenRequired):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_REQUIRED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusForbidden, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrNoFile):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NO_FILE")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FILE_TOO_LARGE")
	case errors.Is(err, ErrFileTypeNotAllowed):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FILE_TYPE_NOT_ALLOWED")
	case errors.Is(err, ErrInvalidFilename):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_FILENAME")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
