package activity

import "errors"

// ErrInvalidInput indicates a missing user id.
var ErrInvalidInput = errors.New("invalid activity input")
