package errors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrAreaNotFound is returned when an area is not found.
	ErrAreaNotFound = errors.New("area not found")
	// ErrEmailTaken is returned when registering with an email that already exists.
	ErrEmailTaken = errors.New("email address already registered")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrOwnerMismatch is returned when a submission declares a different owner
	// than the authenticated caller.
	ErrOwnerMismatch = errors.New("declared owner does not match authenticated user")
)

// ValidationError carries the set of offending fields for a 400 response.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request"
	}
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

// NewValidationError builds a ValidationError for the given fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

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

// MapErrorToHTTP maps domain errors to HTTP errors. Unexpected errors collapse
// to a generic 500 so raw internals never reach clients.
func MapErrorToHTTP(err error) *HTTPError {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return NewHTTPError(http.StatusBadRequest, vErr.Error(), "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrAreaNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "AREA_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrOwnerMismatch):
		return NewHTTPError(http.StatusForbidden, err.Error(), "OWNER_MISMATCH")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
