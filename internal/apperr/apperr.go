// Package apperr defines the error kinds surfaced by the API and how each
// maps onto an HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
)

// Fixed client-facing messages
const (
	MsgUnauthenticated = "Must be logged in to access this route."
	MsgInternal        = "An error has occurred on the server."
)

// Error is an error that knows how it should be presented to clients.
// Path is set for validation errors and names the offending input
// (for example "search.room.value").
type Error struct {
	Kind    Kind
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return e.Path + ": " + e.Message
	}
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	default:
		return "internal"
	}
}

// Validation reports malformed input at path
func Validation(path, message string) *Error {
	return &Error{Kind: KindValidation, Path: path, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthenticated is returned for protected routes without a session
func Unauthenticated() *Error {
	return &Error{Kind: KindAuth, Message: MsgUnauthenticated}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// As extracts an *Error from err. Errors of any other type are treated as
// internal failures.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of kind k
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
