package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable means the connection is not open; no I/O was attempted
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrWriteRejected means an insert, update or delete failed
	ErrWriteRejected = errors.New("write rejected")
	// ErrValidation means a caller precondition was violated before any store access
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means a lookup matched nothing
	ErrNotFound = errors.New("not found")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmptyCart        = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrSelfDeletion     = fmt.Errorf("%w: cannot delete the currently logged-in user", ErrValidation)
)

// Invalid builds a validation error with a message
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
