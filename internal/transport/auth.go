package transport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/rpggio/nestly/internal/store"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type userKey struct{}

// UserResolver resolves a user ID from a bearer token.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// UserFromContext returns the caller's user ID from context, if present.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok
}

// WithUser returns a copy of ctx carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := resolver.ResolveUser(r.Context(), token)
			if err != nil || userID == "" {
				WriteError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

// StaticUserMiddleware attributes every request to userID. Used when auth
// is disabled.
func StaticUserMiddleware(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

// APIKeyResolver looks bearer tokens up in the api_keys collection by
// their SHA-256 hash.
type APIKeyResolver struct {
	client store.Client
}

// NewAPIKeyResolver creates a resolver backed by client.
func NewAPIKeyResolver(client store.Client) *APIKeyResolver {
	return &APIKeyResolver{client: client}
}

func (r *APIKeyResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	q := store.From("api_keys").
		Select("user_id").
		Filter(store.Eq("key_hash", HashToken(token))).
		Take(1)
	res, err := r.client.Query(ctx, q)
	if err != nil {
		return "", err
	}
	if len(res.Rows) == 0 || res.Rows[0].String("user_id") == "" {
		return "", ErrUnauthorized
	}
	return res.Rows[0].String("user_id"), nil
}

// HashToken returns the hex SHA-256 of token as stored in api_keys.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
