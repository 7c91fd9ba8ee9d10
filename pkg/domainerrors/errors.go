// Package domainerrors defines caller-visible errors as a code plus a
// human-readable message. Stores and infrastructure return sentinel errors
// (pkg/platform/sentinel); services translate those into domain errors at the
// boundary, and the HTTP layer maps codes to status codes.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping.
type Code string

const (
	CodeInvalidInput      Code = "invalid_input"
	CodeMissingField      Code = "missing_field"
	CodeNotFound          Code = "not_found"
	CodeUnsupportedStatus Code = "unsupported_status"
	CodeInternal          Code = "internal"
)

// Error carries a code and a message safe to show to the caller.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New builds a domain error with the given code and caller-visible message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause is kept
// for logs; only the message is shown to the caller.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Message extracts the caller-visible message, falling back to a generic one
// so internal details never leak.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a domain error code to an HTTP status code.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeMissingField, CodeUnsupportedStatus:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the code carried by err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
