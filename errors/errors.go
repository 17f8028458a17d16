// Package errors provides the structured error type shared by every voxscribe
// package. Each AppError carries a machine-readable code and the HTTP status
// the boundary should answer with, so the kind of a failure survives from the
// stage that raised it up to the handler.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// ServiceUnavailable reports that a backend is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable,
		fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		http.StatusServiceUnavailable)
}

// ConnectionFailed reports that a backend could not be reached.
func ConnectionFailed(service string) *AppError {
	return New(ErrCodeConnectionFailed,
		fmt.Sprintf("Unable to connect to %s.", service),
		http.StatusServiceUnavailable)
}

// Timeout reports that an operation ran out of time.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout,
		fmt.Sprintf("The %s operation timed out.", operation),
		http.StatusGatewayTimeout)
}

// RateLimited reports that the caller exceeded a rate limit.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please slow down.", http.StatusTooManyRequests)
}

// InvalidInput reports a request parameter that cannot be used.
func InvalidInput(field, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason), http.StatusBadRequest).
		WithDetail("field", field)
}

// MissingField reports a required request field that was not provided.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("%s is required", field), http.StatusBadRequest).
		WithDetail("field", field)
}

// Unauthorized reports missing or rejected credentials.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "Authentication required."
	}
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

// Internal wraps an unclassified failure. The cause is kept for logging only.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "Internal server error", http.StatusInternalServerError).WithCause(cause)
}

// ExternalServiceError reports a failure returned by a backend service.
func ExternalServiceError(service string, cause error) *AppError {
	return New(ErrCodeExternalService,
		fmt.Sprintf("The %s service returned an error.", service),
		http.StatusBadGateway).
		WithCause(cause).
		WithDetail("service", service)
}
