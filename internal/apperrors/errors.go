// Package apperrors defines the error taxonomy shared by the tool operations
// and the HTTP handlers.
//
// Types:
//   - validation: malformed input, the form is re-rendered with the message
//   - unavailable: an optional library or external process is missing
//   - processing: the wrapped library failed; users see a generic message
//   - not_found: a requested download does not exist
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeProcessing  ErrorType = "processing"
	ErrorTypeNotFound    ErrorType = "not_found"
)

// UnavailableKind distinguishes a missing library from a missing runtime
// dependency such as an office suite.
type UnavailableKind string

const (
	KindLibrary UnavailableKind = "library"
	KindRuntime UnavailableKind = "runtime"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType       `json:"type"`
	Message    string          `json:"message"`
	Details    string          `json:"details,omitempty"`
	Kind       UnavailableKind `json:"kind,omitempty"`
	StatusCode int             `json:"-"`
	Cause      error           `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text safe to show in a rendered page.
func (e *AppError) UserMessage() string {
	switch e.Type {
	case ErrorTypeProcessing:
		return "Processing failed: " + e.Message + ". Please check the file and try again."
	case ErrorTypeUnavailable:
		if e.Details != "" {
			return e.Message + ". " + e.Details
		}
	}
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    detail,
		StatusCode: http.StatusOK,
	}
}

// NewUnavailableError reports a capability that is not installed or not
// reachable. hint is shown to the user verbatim.
func NewUnavailableError(kind UnavailableKind, message, hint string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Kind:       kind,
		Message:    message,
		Details:    hint,
		StatusCode: http.StatusOK,
	}
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProcessing,
		Message:    message,
		StatusCode: http.StatusOK,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// As extracts the AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
