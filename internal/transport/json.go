package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rpggio/nestly/internal/domain/activity"
	"github.com/rpggio/nestly/internal/domain/favorite"
	"github.com/rpggio/nestly/internal/domain/profile"
	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/domain/search"
	"github.com/rpggio/nestly/internal/domain/support"
	"github.com/rpggio/nestly/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes payload with status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// DecodeJSON decodes a JSON request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// StatusFor maps a domain or store error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, property.ErrNotFound),
		errors.Is(err, profile.ErrNotFound),
		errors.Is(err, search.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, property.ErrInvalidInput),
		errors.Is(err, profile.ErrInvalidInput),
		errors.Is(err, favorite.ErrInvalidInput),
		errors.Is(err, search.ErrInvalidInput),
		errors.Is(err, support.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest
	case store.IsUniqueViolation(err):
		return http.StatusConflict
	case store.Code(err) == store.CodeForeignKeyViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeErr writes err with its mapped status and display message.
func writeErr(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := store.Message(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	WriteError(w, status, msg)
}

