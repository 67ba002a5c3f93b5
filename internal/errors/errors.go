package errors

import (
	"errors"
)

// Common error types for the chatcraft server
var (
	// Authentication errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrSigning      = errors.New("unable to sign token")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidURL     = errors.New("invalid url")
	ErrBodyTooLarge   = errors.New("request body too large")

	// Upstream errors
	ErrUpstream        = errors.New("upstream request failed")
	ErrUnknownProvider = errors.New("unknown login provider")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
