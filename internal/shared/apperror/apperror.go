// Package apperror defines the error taxonomy shared by every feature.
// Handlers map any error to one of these kinds exactly once, at the HTTP boundary.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how it is surfaced to the client.
type Kind int

const (
	// KindInternal is the fallback for errors that carry no kind.
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindMedia
	KindRepository
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindMedia:
		return "media"
	case KindRepository:
		return "repository"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Exposed reports whether the message of an error of this kind may be shown to clients.
func (k Kind) Exposed() bool {
	return k.Status() < http.StatusInternalServerError
}

// Error is a classified error carrying a single client-facing message.
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

// New returns an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns an Error of the given kind that wraps err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error     { return New(KindValidation, msg) }
func Authentication(msg string) *Error { return New(KindAuthentication, msg) }
func Authorization(msg string) *Error  { return New(KindAuthorization, msg) }
func NotFound(msg string) *Error       { return New(KindNotFound, msg) }
func Conflict(msg string) *Error       { return New(KindConflict, msg) }

// Media wraps a failure of the avatar pipeline.
func Media(err error) *Error {
	return Wrap(KindMedia, "failed to process image", err)
}

// Repository wraps a persistence failure.
func Repository(err error) *Error {
	return Wrap(KindRepository, "internal server error", err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message for err.
// Messages of internal kinds are replaced with a generic text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind.Exposed() {
		return e.Message
	}
	return "internal server error"
}
