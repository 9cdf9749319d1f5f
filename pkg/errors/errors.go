// Package errors defines the coded errors shared by the prereqtree engine,
// its payload sources, the CLI and the HTTP surface.
//
// Three codes are tree failures:
//   - MALFORMED_TREE: the payload is not a single rooted tree
//   - UNKNOWN_NODE: an activation named an id the tree does not have
//   - STRUCTURAL_INVARIANT: a traversal met a cycle or a broken partition
//
// Every code belongs to a [Kind], which front ends map to an HTTP status or
// a process exit code without listing codes themselves.
//
//	err := errors.New(errors.ErrCodeUnknownNode, "no node with id %d", id)
//	if errors.Is(err, errors.ErrCodeUnknownNode) { ... }
//	errors.KindOf(err) // errors.KindMissing
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error code.
type Code string

const (
	ErrCodeMalformedTree       Code = "MALFORMED_TREE"
	ErrCodeUnknownNode         Code = "UNKNOWN_NODE"
	ErrCodeStructuralInvariant Code = "STRUCTURAL_INVARIANT"

	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeViewNotFound Code = "VIEW_NOT_FOUND"

	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by who has to act on them.
type Kind int

const (
	// KindInternal is a bug or an unclassified failure.
	KindInternal Kind = iota
	// KindInput means the caller sent a bad payload, flag or id.
	KindInput
	// KindMissing means a referenced node, view or remote payload is absent.
	KindMissing
	// KindUnavailable means a dependency failed or is at capacity; retrying
	// later may succeed.
	KindUnavailable
)

var kinds = map[Code]Kind{
	ErrCodeMalformedTree:       KindInput,
	ErrCodeInvalidInput:        KindInput,
	ErrCodeInvalidFormat:       KindInput,
	ErrCodeInvalidPath:         KindInput,
	ErrCodeUnknownNode:         KindMissing,
	ErrCodeNotFound:            KindMissing,
	ErrCodeViewNotFound:        KindMissing,
	ErrCodeNetwork:             KindUnavailable,
	ErrCodeTimeout:             KindUnavailable,
	ErrCodeUnsupported:         KindUnavailable,
	ErrCodeInternal:            KindInternal,
	ErrCodeStructuralInvariant: KindInternal,
}

// Kind returns the group of c. Unknown codes are internal.
func (c Code) Kind() Kind { return kinds[c] }

// Error carries a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the kind of err's code; uncoded errors are internal.
func KindOf(err error) Kind { return GetCode(err).Kind() }

// UserMessage returns the message of the outermost *Error without its code
// or cause, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
