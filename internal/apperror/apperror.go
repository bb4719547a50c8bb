// Package apperror defines the error kinds shared by the store, the command
// boundary and the sessions. Callers classify errors with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrBoundary   = errors.New("command failed")
	ErrHost       = errors.New("host integration failed")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable message
	Field   string // optional: field causing the error
	Cause   error  // optional: underlying failure
}

func (e *AppError) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, name string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, name),
	}
}

// Boundary marks a failed command on the boundary. Errors that already carry
// a kind are returned unchanged.
func Boundary(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return &AppError{
		Err:     ErrBoundary,
		Message: fmt.Sprintf("%s: %v", op, err),
		Cause:   err,
	}
}

// Host marks a failed host side effect.
func Host(op string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Err:     ErrHost,
		Message: fmt.Sprintf("%s: %v", op, err),
		Cause:   err,
	}
}

// Kind is the wire name of err's sentinel.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrHost):
		return "host_error"
	default:
		return "internal_error"
	}
}

// FromKind rebuilds an error received over the wire.
func FromKind(kind, message string) error {
	sentinel := ErrBoundary
	switch kind {
	case "validation_error":
		sentinel = ErrValidation
	case "not_found":
		sentinel = ErrNotFound
	case "conflict":
		sentinel = ErrConflict
	case "host_error":
		sentinel = ErrHost
	}
	return &AppError{Err: sentinel, Message: message}
}
