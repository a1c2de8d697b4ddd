// Package errs defines the error taxonomy shared by the marketplace core.
// The transport layer maps these to HTTP status codes, so services never
// import net/http.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range input. Never retried.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports a failed state-transition precondition, e.g. an
// order that was already advanced or a product that is already sold. The
// caller can refresh and retry the intended action.
type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string { return e.msg }

func Conflictf(format string, args ...any) error {
	return &ConflictError{msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing user, product or order.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

func NotFoundf(format string, args ...any) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// PermissionError reports a caller who is authenticated but not allowed to
// perform the operation (not the assigned seller, not an admin, banned).
type PermissionError struct {
	msg string
}

func (e *PermissionError) Error() string { return e.msg }

func Permissionf(format string, args ...any) error {
	return &PermissionError{msg: fmt.Sprintf(format, args...)}
}

// DependencyError reports a failed external collaborator (database, push
// gateway). It wraps the underlying cause.
type DependencyError struct {
	Service string
	Err     error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func Dependency(service string, err error) error {
	return &DependencyError{Service: service, Err: err}
}

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsConflict(err error) bool {
	var t *ConflictError
	return errors.As(err, &t)
}

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsPermission(err error) bool {
	var t *PermissionError
	return errors.As(err, &t)
}

func IsDependency(err error) bool {
	var t *DependencyError
	return errors.As(err, &t)
}
