// Package apierror defines the error taxonomy shared by services and
// handlers. Services return *apierror.Error values; handlers map them to an
// HTTP status exactly once, so no failure propagates past the request
// boundary and internal details never leak to clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure into one of the categories the API reports.
type Kind int

const (
	// KindInternal covers every uncategorized failure.
	KindInternal Kind = iota
	// KindValidation marks a malformed or out-of-range field.
	KindValidation
	// KindUnauthorized marks a missing or absent credential.
	KindUnauthorized
	// KindForbidden marks a credential that is present but insufficient,
	// expired or otherwise invalid.
	KindForbidden
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound
	// KindConflict marks a uniqueness violation.
	KindConflict
)

// Error is the canonical error value exchanged between services and handlers.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional wrapped cause, logged but never serialized
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a 400-class error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized returns a 401-class error.
func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Forbidden returns a 403-class error.
func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a 404-class error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a 409-class error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an uncategorized failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// StatusCode maps an error to its HTTP status. Errors that are not
// *apierror.Error values count as internal.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an *apierror.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
