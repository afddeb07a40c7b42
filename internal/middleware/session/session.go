// Package session authenticates HTTP requests with bearer tokens and
// exposes the account identity through the request context.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vctrubio/summer-expense-tracker/internal/auth"
)

type contextKey string

const (
	accountIDKey contextKey = "account_id"
	emailKey     contextKey = "email"
)

// AccountID returns the authenticated account ID, or "" when the
// request was not authenticated.
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

// Email returns the authenticated user's email, or "".
func Email(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

// RequireAuth rejects requests without a valid Bearer token and stores
// the token's identity in the context for downstream handlers.
func RequireAuth(tokens *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, auth.ErrMissingToken)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || scheme != "Bearer" {
				unauthorized(w, auth.ErrInvalidToken)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				unauthorized(w, auth.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, claims.UserID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
