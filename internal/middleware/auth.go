// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware: session resolution,
// rate limiting, login protection, security headers, and request
// timeouts.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lonecowry/cowry-cms/internal/auth"
	"github.com/lonecowry/cowry-cms/internal/model"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

// ContextKeySession is the context key carrying the *model.SessionUser.
const ContextKeySession ContextKey = "session_user"

// OptionalSession resolves the session cookie when present and
// attaches the verified identity to the request context. Requests
// without a valid token pass through anonymously.
func OptionalSession(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := tokens.Verify(token)
			if err != nil {
				// Invalid cookie is treated the same as no cookie
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), user)))
		})
	}
}

// RequireSession rejects requests that have no verified session with
// a 401 JSON response. It must run after OptionalSession.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSession(r) == nil {
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession returns the verified session identity, or nil for
// anonymous requests.
func GetSession(r *http.Request) *model.SessionUser {
	user, ok := r.Context().Value(ContextKeySession).(*model.SessionUser)
	if !ok {
		return nil
	}
	return user
}

// ContextWithSession attaches a session identity to a context.
// Exported for handler tests.
func ContextWithSession(ctx context.Context, user *model.SessionUser) context.Context {
	return context.WithValue(ctx, ContextKeySession, user)
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "Unauthorized",
	})
}
