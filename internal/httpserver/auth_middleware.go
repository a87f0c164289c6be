package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"messagely/internal/domain"
	"messagely/internal/security"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// AuthMiddleware validates the Bearer token and attaches the user to the
// context. Requests without a valid token for an existing user get 401.
func AuthMiddleware(tokens *security.TokenService, users domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			username, err := tokens.Parse(tokenStr)
			if err != nil {
				writeError(w, domain.ErrInvalidToken)
				return
			}

			user, err := users.GetByUsername(r.Context(), username)
			if err != nil {
				writeError(w, domain.ErrUnauthorized)
				return
			}

			ctx := WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCorrectUser allows the request through only when the token's user
// matches the {username} path parameter.
func RequireCorrectUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		if user.Username != chi.URLParam(r, "username") {
			writeError(w, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
