package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUndefinedColumn(t *testing.T) {
	assert.True(t, IsUndefinedColumn(&Error{Code: CodeUndefinedColumn, Message: "x"}))
	assert.True(t, IsUndefinedColumn(fmt.Errorf("query: %w", &Error{Code: CodeUndefinedColumn})))
	assert.True(t, IsUndefinedColumn(errors.New(`column "verified" does not exist`)))
	assert.True(t, IsUndefinedColumn(errors.New("no such column: verified")))
	assert.False(t, IsUndefinedColumn(errors.New("connection refused")))
	assert.False(t, IsUndefinedColumn(&Error{Code: CodeUndefinedTable, Message: "relation does not exist"}))
	assert.False(t, IsUndefinedColumn(nil))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "request cancelled", Message(fmt.Errorf("wrap: %w", context.Canceled)))
	assert.Equal(t, "request timed out", Message(context.DeadlineExceeded))
	assert.Equal(t, "already exists", Message(&Error{Code: CodeUniqueViolation, Message: "dup"}))
	assert.Equal(t, "referenced item does not exist", Message(&Error{Code: CodeForeignKeyViolation}))
	assert.Equal(t, "boom", Message(&Error{Code: "XX000", Message: "boom"}))
	assert.Equal(t, "not found", Message(fmt.Errorf("property p1: %w", ErrNotFound)))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}
