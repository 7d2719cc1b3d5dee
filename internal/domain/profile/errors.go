package profile

import "errors"

var (
	// ErrNotFound indicates the profile doesn't exist.
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidInput indicates invalid profile input.
	ErrInvalidInput = errors.New("invalid profile input")
)
