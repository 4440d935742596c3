// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST handlers for the site backend:
// session auth, blog posts, uploads, and health.
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/lonecowry/cowry-cms/internal/auth"
	"github.com/lonecowry/cowry-cms/internal/config"
	"github.com/lonecowry/cowry-cms/internal/middleware"
	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/service"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	cfg    *config.Config
	posts  *service.PostService
	users  *service.UserService
	events *service.EventService
	media  *service.MediaService
	tokens *auth.TokenService

	loginProtection *middleware.LoginProtection
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, cfg *config.Config, lp *middleware.LoginProtection) *Handler {
	return &Handler{
		cfg:             cfg,
		posts:           service.NewPostService(db),
		users:           service.NewUserService(db),
		events:          service.NewEventService(db),
		media:           service.NewMediaService(cfg.UploadsDir),
		tokens:          auth.NewTokenService(cfg.AuthSecret),
		loginProtection: lp,
	}
}

// Tokens exposes the token service for session middleware wiring.
func (h *Handler) Tokens() *auth.TokenService {
	return h.tokens
}

// sessionUser returns the request's verified identity, or nil.
func (h *Handler) sessionUser(r *http.Request) *model.SessionUser {
	return middleware.GetSession(r)
}

// Envelope is the response wrapper used by every endpoint. Exactly
// one of Data and Error is populated.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteSuccess writes a 200 envelope carrying data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteCreated writes a 201 envelope carrying data.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// WriteError writes an error envelope with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, Envelope{Success: false, Error: message})
}
