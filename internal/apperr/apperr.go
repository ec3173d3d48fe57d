// Package apperr defines the error taxonomy shared by the services, the
// storage backends and the HTTP layer. Each concrete error carries a
// user-facing message and unwraps to one of the sentinel kinds below, so
// callers classify with errors.Is and the gateway maps kinds to status codes.
package apperr

import "errors"

// Sentinel kinds.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("unauthenticated")
	ErrNotFound   = errors.New("not found")
)

// Error is a classified error with a message safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation reports a missing or empty required field.
func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

// Conflict reports a duplicate unique value.
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// Auth reports bad credentials or an invalid, expired or missing token.
func Auth(msg string) error { return &Error{Kind: ErrAuth, Message: msg} }

// NotFound reports an absent entity or one owned by somebody else.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

// Message returns the client-facing message of err. Unclassified errors
// yield their plain Error() text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
