package apperrors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing, invalid or expired credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermission indicates the account lacks access to a feature (403-class,
	// e.g. premium-only generation context)
	ErrPermission = errors.New("permission denied")

	// ErrInvalidInput indicates a client-side form/schema violation; it is
	// surfaced inline and never sent to the backend
	ErrInvalidInput = errors.New("invalid input")

	// ErrRemote indicates a non-2xx or transport failure from the vocabulary API
	ErrRemote = errors.New("remote request failed")

	// ErrNothingToDownload indicates a packaged-deck download was requested
	// with no generated identifiers to package
	ErrNothingToDownload = errors.New("nothing to download")
)

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// UnauthorizedError creates an unauthorized error with context
func UnauthorizedError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrUnauthorized)
	}
	return ErrUnauthorized
}

// PermissionError creates a permission error with context
func PermissionError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrPermission)
	}
	return ErrPermission
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidInput)
}

// RemoteError creates a remote request error carrying the HTTP status
func RemoteError(operation string, status int) error {
	return fmt.Errorf("%s returned status %d: %w", operation, status, ErrRemote)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
