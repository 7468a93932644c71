// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"yamdb/internal/models"
	"yamdb/internal/permission"
	"yamdb/internal/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// ActorKey is the context key for the authenticated user.
	ActorKey contextKey = "actor"
)

// TokenParser validates access tokens.
type TokenParser interface {
	ParseAccess(raw string) (*token.Claims, error)
}

// UserLoader loads the user named by a token.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate resolves a Bearer access token to a user and stores it in
// the request context. Requests without an Authorization header proceed
// anonymously; a header that does not resolve to an active user is
// rejected with 401.
func Authenticate(tokens TokenParser, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header must be 'Bearer <token>'.")
				return
			}

			claims, err := tokens.ParseAccess(strings.TrimSpace(raw))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Given token not valid for any token type.")
				return
			}
			id, err := claims.UserID()
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Token contained no recognizable user identification.")
				return
			}

			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				slog.Error("authenticate user lookup failed", "error", err)
				writeError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if user == nil || !user.IsActive {
				writeError(w, http.StatusUnauthorized, "User not found.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), user)))
		})
	}
}

// Authorize applies the coarse check of rule before the handler runs.
// Object-level checks are left to handlers, which load the object.
func Authorize(rule permission.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := PermissionRequest(r)
			if !rule.HasPermission(req) {
				writeError(w, permission.DenialStatus(req), permission.DenialDetail(req))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromCtx returns the authenticated user, or nil for anonymous
// requests.
func ActorFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(ActorKey).(*models.User)
	return u
}

// WithActor returns a copy of ctx carrying u as the authenticated user.
func WithActor(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ActorKey, u)
}

// PermissionRequest builds the permission input for r.
func PermissionRequest(r *http.Request) permission.Request {
	return permission.Request{Actor: ActorFromCtx(r.Context()), Method: r.Method}
}
