// Package apperr defines the error taxonomy shared by every handler.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for response mapping.
type Kind int

const (
	// KindValidation marks input that fails a data-model rule.
	KindValidation Kind = iota
	// KindUniqueness marks a duplicate-key constraint violation.
	KindUniqueness
	// KindNotFound marks an unresolved entity reference or route.
	KindNotFound
	// KindStore marks any other store or internal failure.
	KindStore
)

// Error carries a kind alongside a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a validation failure naming the offending field.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Uniqueness builds a constraint-violation failure with a short message.
func Uniqueness(message string) *Error {
	return &Error{Kind: KindUniqueness, Message: message}
}

// NotFound builds a missing-entity failure.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Store wraps an unexpected failure from the persistence layer. The
// failure's own message is surfaced, falling back to a generic text.
func Store(err error) *Error {
	message := "Internal Server Error"
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf extracts the kind of err, defaulting to KindStore for
// errors raised outside this taxonomy.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// ClientMessage returns the message safe to send to the client.
func ClientMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Internal Server Error"
}
