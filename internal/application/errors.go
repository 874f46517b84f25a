package application

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPlaceNotFound      = errors.New("place not found")
	ErrForbidden          = errors.New("caller does not own this place")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPersistence        = errors.New("persistence failure")
)

// persistence wraps a store failure once so callers can match it with
// errors.Is while the cause stays available for logging.
func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
