package favorite

import "errors"

var (
	// ErrInvalidInput indicates a missing user or property id.
	ErrInvalidInput = errors.New("invalid favorite input")
)
