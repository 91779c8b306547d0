// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"mediaservice/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserKey is the context key for the authenticated author.
	UserKey contextKey = "user"
)

// Authenticator checks author credentials and returns the matching user,
// or nil when they do not match. store.UserStore satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// RequireAuthor authenticates the request with HTTP Basic credentials and
// stores the user in the request context. Requests without valid
// credentials get a 401 error envelope.
func RequireAuthor(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			user, err := auth.Authenticate(r.Context(), email, password)
			if err != nil {
				slog.ErrorContext(r.Context(), "authenticate failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				slog.WarnContext(r.Context(), "invalid author credentials", "email", email, "remote", ClientIP(r))
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFromCtx extracts the authenticated user from the request context.
// Returns nil if the request is not authenticated.
func UserFromCtx(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="mediaservice", charset="UTF-8"`)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"errors":[{"code":"unauthorized","title":"Authentication required","details":"Valid author credentials are required."}]}`))
}
