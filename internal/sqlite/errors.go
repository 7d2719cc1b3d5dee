package sqlite

import (
	"context"
	"errors"
	"strings"

	"github.com/rpggio/nestly/internal/store"
)

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no such column") || strings.Contains(err.Error(), "has no column named")
}

func isUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no such table")
}

// classify converts a driver error into a *store.Error carrying the code
// hosted backends report for the same failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *store.Error
	if errors.As(err, &se) {
		return err
	}

	code := ""
	switch {
	case isUndefinedColumn(err):
		code = store.CodeUndefinedColumn
	case isUndefinedTable(err):
		code = store.CodeUndefinedTable
	case isUniqueViolation(err):
		code = store.CodeUniqueViolation
	case isForeignKeyViolation(err):
		code = store.CodeForeignKeyViolation
	}
	return &store.Error{Code: code, Message: trimDriverPrefix(err.Error()), Err: err}
}

func trimDriverPrefix(msg string) string {
	if i := strings.Index(msg, ": "); i >= 0 && strings.HasPrefix(msg, "SQL logic error") {
		msg = msg[i+2:]
	}
	return strings.TrimSuffix(msg, " (1)")
}
