package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when an operation needs a signed-in user.
	ErrNoSession = errors.New("not signed in")

	// ErrNotFound is returned when a document or account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")
)

// ValidationError reports a missing or malformed field. It is raised before
// any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AuthError is a rejection from the auth provider. Message is shown to the
// user verbatim.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// StoreError is a rejected insert, update or remove.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}
