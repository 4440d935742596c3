// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lonecowry/cowry-cms/internal/auth"
	"github.com/lonecowry/cowry-cms/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User *model.SessionUser `json:"user"`
}

// Login handles POST /api/auth/login. On success it issues a session
// token and sets the auth cookie. Unknown accounts and wrong
// passwords produce the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if locked, remaining := h.loginProtection.IsAccountLocked(req.Email); locked {
		WriteError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Account temporarily locked. Try again in %d minutes.", int(remaining.Minutes())+1))
		return
	}

	user, err := h.users.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Error("verifying credentials", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		h.loginProtection.RecordFailedAttempt(req.Email)
		h.events.Log(r.Context(), model.EventLevelWarn, model.EventCategoryAuth,
			"failed login attempt", map[string]any{"email": req.Email})
		WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.loginProtection.RecordSuccessfulLogin(req.Email)

	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.Error("issuing session token", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	auth.SetSessionCookie(w, token, !h.cfg.IsDevelopment())

	h.events.LogAuth(r.Context(), "user logged in", map[string]any{"email": user.Email})

	WriteSuccess(w, sessionResponse{User: model.SessionUserFrom(user)})
}

// Session handles GET /api/auth/login: it reports the current session
// state. Failures are reported inside a 200 envelope so the frontend
// can poll without error handling.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		WriteJSON(w, http.StatusOK, Envelope{Success: false, Error: "Not authenticated"})
		return
	}

	user, err := h.tokens.Verify(token)
	if err != nil {
		WriteJSON(w, http.StatusOK, Envelope{Success: false, Error: "Invalid token"})
		return
	}

	WriteSuccess(w, sessionResponse{User: user})
}

// Logout handles POST /api/auth/logout. Sessions are stateless, so
// logout only clears the cookie; an already-issued token stays valid
// until it expires.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, !h.cfg.IsDevelopment())

	if user := h.sessionUser(r); user != nil {
		h.events.LogAuth(r.Context(), "user logged out", map[string]any{"email": user.Email})
	}

	WriteSuccess(w, map[string]bool{"loggedOut": true})
}
