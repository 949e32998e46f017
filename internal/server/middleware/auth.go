// Package middleware provides HTTP middleware for reader authentication.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// readerIDKey is the context key for the authenticated reader ID.
const readerIDKey ContextKey = "readerID"

// TokenValidator validates bearer tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (ReaderIDGetter, error)
}

// ReaderIDGetter extracts the reader ID from token claims.
type ReaderIDGetter interface {
	GetReaderID() uuid.UUID
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the
// reader ID to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				unauthorized(w)
				return
			}

			readerID := claims.GetReaderID()
			if readerID == uuid.Nil {
				unauthorized(w)
				return
			}

			ctx := WithReaderID(r.Context(), readerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="reader-agent"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

// WithReaderID returns a context carrying readerID.
func WithReaderID(ctx context.Context, readerID uuid.UUID) context.Context {
	return context.WithValue(ctx, readerIDKey, readerID)
}

// GetReaderID extracts the authenticated reader ID from the request context.
func GetReaderID(r *http.Request) (uuid.UUID, error) {
	readerID, ok := r.Context().Value(readerIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("reader ID not found in request context")
	}
	return readerID, nil
}
