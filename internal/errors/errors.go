package errors

import (
	"errors"
	"fmt"
)

// Common error types for the GISTree server
var (
	// Login flow errors
	ErrMissingCode    = errors.New("missing authorization code")
	ErrSessionExpired = errors.New("login session expired")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUpstream       = errors.New("identity provider request failed")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidCSRF    = errors.New("invalid CSRF token")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Storage errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Mark attaches a sentinel to err so errors.Is matches both the sentinel and
// the original cause.
func Mark(err, sentinel error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need only this package.
func New(text string) error {
	return errors.New(text)
}

// PublicError is an error whose message is safe to show to API callers.
// It matches its sentinel under Is.
type PublicError struct {
	Sentinel error
	Message  string
}

func (e *PublicError) Error() string {
	return e.Message
}

func (e *PublicError) Unwrap() error {
	return e.Sentinel
}

// Public returns a PublicError for sentinel with a formatted message.
func Public(sentinel error, format string, args ...interface{}) error {
	return &PublicError{Sentinel: sentinel, Message: fmt.Sprintf(format, args...)}
}

// PublicMessage returns the caller-safe message carried by err, if any.
func PublicMessage(err error) (string, bool) {
	var pe *PublicError
	if errors.As(err, &pe) {
		return pe.Message, true
	}
	return "", false
}
