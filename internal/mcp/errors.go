package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/nestly/internal/domain/favorite"
	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/domain/search"
	"github.com/rpggio/nestly/internal/store"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain and store errors to MCP error codes. Unknown errors
// map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, property.ErrNotFound):
		return &APIError{Code: "PROPERTY_NOT_FOUND", Message: "property not found", RecoveryHint: "Check the ID with search_properties"}
	case errors.Is(err, search.ErrNotFound):
		return &APIError{Code: "SEARCH_NOT_FOUND", Message: "saved search not found", RecoveryHint: "List saved searches first"}
	case errors.Is(err, property.ErrInvalidInput),
		errors.Is(err, favorite.ErrInvalidInput),
		errors.Is(err, search.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: store.Message(err)}
	case store.IsUniqueViolation(err):
		return &APIError{Code: "ALREADY_EXISTS", Message: store.Message(err)}
	case store.Code(err) == store.CodeForeignKeyViolation:
		return &APIError{Code: "UNKNOWN_REFERENCE", Message: store.Message(err), RecoveryHint: "Check the property ID"}
	default:
		return nil
	}
}

// toolError converts err into the error returned from a tool handler.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return errors.New(store.Message(err))
}
