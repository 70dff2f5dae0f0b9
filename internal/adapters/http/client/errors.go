package client

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrInvalidBaseURL = errors.New("invalid base url")
	ErrTransport      = errors.New("transport failure")
	ErrStatus         = errors.New("unexpected status")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrDecode         = errors.New("decode failure")
)

// Error describes a failed backend call.
type Error struct {
	Op      string
	Method  string
	URL     string
	Status  int
	Message string
	Kind    error
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
