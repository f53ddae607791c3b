// Package apperr defines the error kinds surfaced to API clients.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindValidation         Kind = "ValidationError"
	KindUnauthorized       Kind = "Unauthorized"
	KindForbidden          Kind = "Forbidden"
	KindNotFound           Kind = "NotFound"
	KindConflict           Kind = "Conflict"
	KindInternal           Kind = "Internal"
)

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.NotFound(""))
// style checks work without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "invalid credentials")
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(KindForbidden, format, args...)
}

func NotFound(resource string) *Error {
	return New(KindNotFound, "%s not found", resource)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

func Internal(err error) *Error {
	return Wrap(KindInternal, err, "internal error")
}

// KindOf reports the kind of err, Internal when it is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
