// Package apperror defines the error taxonomy shared by every store.
//
// Each failure carries an explicit Kind plus a sentinel error, so callers can
// branch with either apperror.KindOf(err) or errors.Is(err, apperror.ErrX).
// The HTTP layer maps kinds to status codes; nothing inspects message text.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a class of failure.
type Kind string

const (
	KindMissingFields     Kind = "missing_fields"
	KindInvalidIdentifier Kind = "invalid_identifier"
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindAlreadyExists     Kind = "already_exists"
	KindUserNotFound      Kind = "user_not_found"
	KindWrongPassword     Kind = "wrong_password"
	KindUnknown           Kind = "unknown"
)

var (
	ErrMissingFields     = errors.New("missing fields")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrValidation        = errors.New("Validation Error")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrWrongPassword     = errors.New("wrong password")
)

// Messages returned to API callers.
const (
	MsgMissingFields = "All required fields must be provided"
	MsgInvalidID     = "Invalid ID provided"
	MsgUserExists    = "Username or email already in use"
	MsgUserNotFound  = "User not found"
	MsgWrongPassword = "Wrong password"
)

type AppError struct {
	Kind    Kind   // failure class
	Err     error  // sentinel for errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *AppError in err's chain, or
// KindUnknown when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// MissingFields reports that one or more required inputs were absent or empty.
// fields is informational; the message stays generic.
func MissingFields(fields ...string) *AppError {
	return &AppError{
		Kind:    KindMissingFields,
		Err:     ErrMissingFields,
		Message: MsgMissingFields,
		Field:   strings.Join(fields, ","),
	}
}

// InvalidIdentifier reports a caller-supplied reference that is not a
// well-formed identifier.
func InvalidIdentifier(field string) *AppError {
	return &AppError{
		Kind:    KindInvalidIdentifier,
		Err:     ErrInvalidIdentifier,
		Message: MsgInvalidID,
		Field:   field,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// NotFound builds the "<Resource> not found" error. resource is capitalised
// the way it should read in the message, e.g. "Mouse" or "Log entry".
func NotFound(resource, key string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Field:   key,
	}
}

// AlreadyExists reports a uniqueness violation.
func AlreadyExists(message string) *AppError {
	return &AppError{
		Kind:    KindAlreadyExists,
		Err:     ErrAlreadyExists,
		Message: message,
	}
}

// UserNotFound is the login failure for an unknown username. It is distinct
// from NotFound so the HTTP layer can answer 401 instead of 404.
func UserNotFound() *AppError {
	return &AppError{
		Kind:    KindUserNotFound,
		Err:     ErrUserNotFound,
		Message: MsgUserNotFound,
		Field:   "username",
	}
}

func WrongPassword() *AppError {
	return &AppError{
		Kind:    KindWrongPassword,
		Err:     ErrWrongPassword,
		Message: MsgWrongPassword,
		Field:   "password",
	}
}
