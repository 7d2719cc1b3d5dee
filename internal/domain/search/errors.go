package search

import "errors"

var (
	// ErrNotFound indicates the saved search doesn't exist for the user.
	ErrNotFound = errors.New("saved search not found")
	// ErrInvalidInput indicates invalid saved search input.
	ErrInvalidInput = errors.New("invalid saved search input")
)
