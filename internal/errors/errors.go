// Package errors defines coded domain errors shared by services and the API.
//
// Services return *Error values; handlers translate them with HTTPStatus.
// Matching with errors.Is compares codes, so a wrapped SourceUnavailable
// error still matches ErrSourceUnavailable:
//
//	if errors.Is(err, errors.ErrSourceUnavailable) {
//	    // captions missing for this video
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes.
const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidation        Code = "VALIDATION"
	CodeConflict          Code = "CONFLICT"
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	CodeRateLimited       Code = "RATE_LIMITED"
	CodeInternal          Code = "INTERNAL"
)

// HTTPStatus maps a code onto a response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeSourceUnavailable:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrSourceUnavailable = &Error{Code: CodeSourceUnavailable, Message: "source unavailable"}
	ErrRateLimited       = &Error{Code: CodeRateLimited, Message: "rate limited"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFoundf creates a not found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflictf creates a conflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// SourceUnavailable reports that captions or a description could not be
// loaded. The enclosing operation fails; nothing retries.
func SourceUnavailable(videoID string, cause error) *Error {
	return &Error{
		Code:    CodeSourceUnavailable,
		Message: fmt.Sprintf("source unavailable for video %s", videoID),
		Details: map[string]string{"video_id": videoID},
		cause:   cause,
	}
}

// RateLimited creates a rate limit error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Internalf creates an internal error.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
