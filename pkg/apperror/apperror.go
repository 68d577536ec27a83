// Package apperror defines the error kinds shared by the registration core and
// its adapters. Callers match kinds with errors.Is against the Err* values or
// read them with KindOf.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Unexpected covers persistence, signing and any other failure not listed below.
	Unexpected Kind = iota
	InvalidFormat
	DuplicateIdentity
	// Configuration is fatal at startup and never returned per request.
	Configuration
	MalformedToken
)

func (k Kind) String() string {
	switch k {
	case InvalidFormat:
		return "invalid_format"
	case DuplicateIdentity:
		return "duplicate_identity"
	case Configuration:
		return "configuration"
	case MalformedToken:
		return "malformed_token"
	default:
		return "unexpected"
	}
}

// Error carries a kind, a message safe to show to callers and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when target is an *Error of the same kind, so the
// Err* sentinels below work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUnexpected        = &Error{Kind: Unexpected}
	ErrInvalidFormat     = &Error{Kind: InvalidFormat}
	ErrDuplicateIdentity = &Error{Kind: DuplicateIdentity}
	ErrConfiguration     = &Error{Kind: Configuration}
	ErrMalformedToken    = &Error{Kind: MalformedToken}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// MessageOf returns the caller-facing message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return ""
}
