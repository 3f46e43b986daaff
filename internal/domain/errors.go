package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the boundary layer can map them to responses.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION_FAILED"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindPermission ErrorKind = "PERMISSION_DENIED"
	KindStorage    ErrorKind = "STORAGE_FAILURE"
)

// Error is the single error type surfaced by the engine.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrPermission = &Error{Kind: KindPermission}
	ErrStorage    = &Error{Kind: KindStorage}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches a kind-only sentinel against any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Permissionf builds a PermissionError.
func Permissionf(format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// StorageFailure wraps a persistence error; the core never retries these.
func StorageFailure(op string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: op, Cause: cause}
}

// KindOf returns the kind of err, treating unknown errors as storage failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}
