// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lonecowry/cowry-cms/internal/config"
	"github.com/lonecowry/cowry-cms/internal/middleware"
	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/store"
	"github.com/lonecowry/cowry-cms/internal/testutil"
)

// testEnv bundles everything a handler test needs.
type testEnv struct {
	handler *Handler
	router  chi.Router
	db      *sql.DB
}

// newTestEnv creates a handler over a migrated temp database with the
// default admin seeded, mounted on the same routes as production.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	if err := store.Seed(context.Background(), db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	cfg := &config.Config{
		AuthSecret: "Xk9mPq2wRt5vYz8aBc3dEf6gHj1nLs4u",
		Env:        "development",
		UploadsDir: t.TempDir(),
	}

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit: 1000,
		IPBurst:     1000,
	})
	h := NewHandler(db, cfg, lp)

	r := chi.NewRouter()
	r.Use(middleware.OptionalSession(h.Tokens()))
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Get("/login", h.Session)
			r.Post("/logout", h.Logout)
		})
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.With(middleware.RequireSession()).Post("/", h.CreatePost)
			r.Get("/{id}", h.GetPost)
			r.With(middleware.RequireSession()).Put("/{id}", h.UpdatePost)
			r.With(middleware.RequireSession()).Delete("/{id}", h.DeletePost)
		})
		r.With(middleware.RequireSession()).Post("/uploads", h.Upload)
	})

	return &testEnv{handler: h, router: r, db: db}
}

// do performs a request against the test router.
func (e *testEnv) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login authenticates as the seeded admin and returns the session cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"admin@lonecowry.com","password":"admin123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("login response did not set auth_token cookie")
	return nil
}

// decodeEnvelope parses a response body into an Envelope with data
// left as raw JSON.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, json.RawMessage, string) {
	t.Helper()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v (body: %s)", err, rec.Body.String())
	}
	return env.Success, env.Data, env.Error
}

// createPost inserts a post through the API and returns it decoded.
func (e *testEnv) createPost(t *testing.T, cookie *http.Cookie, body string) *model.Post {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/posts/", body, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post status = %d, body = %s", rec.Code, rec.Body.String())
	}

	_, data, _ := decodeEnvelope(t, rec)
	var post model.Post
	if err := json.Unmarshal(data, &post); err != nil {
		t.Fatalf("decoding post: %v", err)
	}
	return &post
}
