package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrTransientBackend = errors.New("backend unavailable")
	ErrConfiguration    = errors.New("invalid configuration")
)

// IsValidation reports whether err is a user-correctable input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTransient reports whether err may succeed when the whole submission is retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientBackend)
}
