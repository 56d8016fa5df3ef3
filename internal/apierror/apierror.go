package apierror

import (
	"errors"
	"net/http"
)

// Error is an error carrying the HTTP status it should surface with.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation reports missing or blank required input (400).
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Conflict reports a uniqueness violation (409).
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// NotFound reports a missing record (404).
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Auth reports bad credentials or a bad, mismatched or expired token (401).
func Auth(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Upload reports a failed media upload (400).
func Upload(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Internal reports an unexpected failure (500).
func Internal(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message}
}

// From maps any error onto the taxonomy. Recognized errors pass through;
// everything else becomes a generic internal error.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("something went wrong")
}
