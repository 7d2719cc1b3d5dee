package property

import "errors"

var (
	// ErrNotFound indicates the property doesn't exist or isn't visible.
	ErrNotFound = errors.New("property not found")
	// ErrInvalidInput indicates invalid property input.
	ErrInvalidInput = errors.New("invalid property input")
)
