package support

import "errors"

// ErrInvalidInput indicates invalid ticket input.
var ErrInvalidInput = errors.New("invalid ticket input")
