package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/database/models"
)

type contextKey string

const (
	userKey  contextKey = "current_user"
	tokenKey contextKey = "bearer_token"
)

// Auth resolves the presented bearer token to a user on every request. The
// plaintext token is kept in the context because logout and refresh operate
// on exactly the token that was presented.
func Auth(resolver auth.TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			user, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": "Unauthenticated",
	})
}

// GetUser returns the authenticated user, or nil outside the auth middleware.
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}

func GetUserID(ctx context.Context) uuid.UUID {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return uuid.Nil
}

// GetToken returns the plaintext bearer token presented with the request.
func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}
