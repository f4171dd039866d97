// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const userKey ctxKey = "user"

// JWTAuth is a middleware that enforces bearer-token authentication.
//
// It expects an "Authorization: Bearer <token>" header carrying an HS256
// JWT signed with the configured secret. On success it extracts the
// subject claim and stores it in the request context, so it can be used
// downstream as the authenticated user ID.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "could not validate credentials", http.StatusUnauthorized)
				return
			}

			claims := &jwt.RegisteredClaims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !tok.Valid || claims.Subject == "" {
				http.Error(w, "could not validate credentials", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the
// request context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithUserID returns a context carrying the given user ID. Intended for
// tests exercising handlers below the auth middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}
