// Package apperr provides the error taxonomy shared by stores, the calendar
// core and the HTTP layer.
package apperr

import (
	"errors"
)

// Sentinel errors for common failure modes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries a user-facing message while matching one of the sentinels
// through errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound returns an ErrNotFound with the given message, e.g. "Project not found".
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Forbidden returns an ErrForbidden with the given message.
func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid creates a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Message returns the user-facing text of err.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
