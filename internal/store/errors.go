package store

import (
	"context"
	"errors"
	"strings"
)

// Error codes reported by Client implementations. They follow the
// PostgreSQL SQLSTATE values hosted relational backends expose.
const (
	CodeUndefinedColumn     = "42703"
	CodeUndefinedTable      = "42P01"
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

var (
	// ErrNotFound is returned when a requested row doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a query references an invalid
	// identifier or carries an unsupported operator
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a store-side failure.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the store error code carried by err, or "".
func Code(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsUndefinedColumn reports whether err means a referenced column does not
// exist in the target collection.
func IsUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	if Code(err) == CodeUndefinedColumn {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such column") ||
		(strings.Contains(msg, "column") && strings.Contains(msg, "does not exist"))
}

// IsUniqueViolation reports whether err is a uniqueness constraint failure.
func IsUniqueViolation(err error) bool {
	return Code(err) == CodeUniqueViolation
}

// Message reduces err to a message fit for display.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var se *Error
	if errors.As(err, &se) {
		switch se.Code {
		case CodeUniqueViolation:
			return "already exists"
		case CodeForeignKeyViolation:
			return "referenced item does not exist"
		}
		if se.Message != "" {
			return se.Message
		}
	}
	if errors.Is(err, ErrNotFound) {
		return "not found"
	}
	return err.Error()
}
