package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindAuth       ErrorKind = "auth"
	KindState      ErrorKind = "state"
	KindIndex      ErrorKind = "index"
	KindAttribute  ErrorKind = "attribute"
)

// Error is the single failure type returned by the registries.
// Msg is meant for humans and is returned unchanged at the API boundary.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Msg
}

// Is matches another *Error of the same kind and message, so sentinel
// values such as ErrInvalidLogin work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newError(KindValidation, format, args...) }
func Conflict(format string, args ...any) *Error   { return newError(KindConflict, format, args...) }
func NotFound(format string, args ...any) *Error   { return newError(KindNotFound, format, args...) }
func State(format string, args ...any) *Error      { return newError(KindState, format, args...) }
func Index(format string, args ...any) *Error      { return newError(KindIndex, format, args...) }
func Attribute(format string, args ...any) *Error  { return newError(KindAttribute, format, args...) }

// ErrInvalidLogin is returned for every login failure.
var ErrInvalidLogin = &Error{Kind: KindAuth, Msg: "invalid login or password"}

// IsKind helps callers classify errors without knowing messages.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or "" when err is not a domain error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
