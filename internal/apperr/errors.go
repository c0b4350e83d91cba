// Package apperr defines the error taxonomy shared by all fieldgate procedures.
// Procedures return these errors unchanged; the transport layer maps each code
// to a stable HTTP status and JSON body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error category.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeConfiguration Code = "CONFIGURATION_ERROR"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// ServiceError is a typed failure with a stable code and HTTP mapping.
type ServiceError struct {
	Code       Code           `json:"code"`
	HTTPStatus int            `json:"-"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a detail entry and returns the error for chaining.
func (e *ServiceError) WithDetails(key string, value any) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(code Code, status int, message string) *ServiceError {
	return &ServiceError{Code: code, HTTPStatus: status, Message: message}
}

// Validation reports malformed or out-of-range input.
func Validation(message string) *ServiceError {
	return newError(CodeValidation, http.StatusBadRequest, message)
}

// ValidationField reports a single offending field.
func ValidationField(field, message string) *ServiceError {
	return Validation(message).WithDetails("field", field)
}

// Unauthorized reports a request with no resolvable identity.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "authentication required"
	}
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

// Forbidden reports an authenticated caller that does not own the resource.
func Forbidden(message string) *ServiceError {
	if message == "" {
		message = "access denied"
	}
	return newError(CodeForbidden, http.StatusForbidden, message)
}

// NotFound reports a missing resource id.
func NotFound(resource string) *ServiceError {
	return newError(CodeNotFound, http.StatusNotFound, resource+" not found")
}

// Conflict reports a uniqueness violation such as a duplicate registration email.
func Conflict(message string) *ServiceError {
	return newError(CodeConflict, http.StatusConflict, message)
}

// Configuration reports a deployment or programmer error. The message is logged
// in full but only a generic failure is exposed to callers.
func Configuration(message string) *ServiceError {
	return newError(CodeConfiguration, http.StatusInternalServerError, message)
}

// RateLimited reports a caller exceeding the request budget.
func RateLimited() *ServiceError {
	return newError(CodeRateLimited, http.StatusTooManyRequests, "rate limit exceeded")
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *ServiceError {
	err := newError(CodeInternal, http.StatusInternalServerError, message)
	err.cause = cause
	return err
}

// GetServiceError extracts a *ServiceError from an error chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == code
}
