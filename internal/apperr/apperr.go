// ABOUTME: Typed domain failures shared by the auth and task services
// ABOUTME: Maps each failure kind to an HTTP status and a user-safe message

package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindInternal is any failure that is not a recognized domain error.
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthenticated
	KindNotFound
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// genericMessage is the only text a caller ever sees for internal failures.
const genericMessage = "internal server error"

// Error is a domain failure carrying a message that is safe to show callers.
// Err holds the underlying cause and is never exposed outside the process.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or missing input.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict reports a duplicate unique key.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Unauthenticated reports bad credentials or a missing, invalid, or expired token.
func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// NotFound reports a resource that is absent or not owned by the caller.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Message: genericMessage, Err: err}
}

// KindOf extracts the kind from any error, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the caller-facing message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return genericMessage
}

// HTTPStatus maps a kind to its transport status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
