// Package errs defines the error taxonomy shared by every query component.
// Components never log; they return one of these typed errors and the caller
// (CLI or MCP transport) decides how to present it.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class. The set is closed: transports map these
// onto their own error representations.
type Kind string

const (
	StorageUnavailable    Kind = "storage_unavailable"
	StorageCorrupt        Kind = "storage_corrupt"
	NotFound              Kind = "not_found"
	AmbiguousID           Kind = "ambiguous_id"
	InvalidDateExpression Kind = "invalid_date_expression"
	InvalidParameters     Kind = "invalid_parameters"
	UnknownOperation      Kind = "unknown_operation"
)

// Error carries a Kind, a human-readable message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Raw     error
}

func (e *Error) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Raw)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Raw }

// New returns an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Raw: err}
}

// KindOf reports the Kind carried by err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
