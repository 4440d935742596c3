// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"admin@lonecowry.com","password":"admin123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	success, data, _ := decodeEnvelope(t, rec)
	if !success {
		t.Fatal("success = false")
	}

	var resp struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if resp.User.Email != "admin@lonecowry.com" || resp.User.Role != "admin" {
		t.Errorf("user = %+v", resp.User)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("auth_token cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("cookie should be SameSite=Lax")
	}
	if cookie.Secure {
		t.Error("cookie should not be Secure in development")
	}
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"ADMIN@LONECOWRY.COM","password":"admin123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{}`,
		`{"email":"admin@lonecowry.com"}`,
		`{"password":"admin123"}`,
		``,
	} {
		rec := env.do(t, http.MethodPost, "/api/auth/login", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Email and password are required") {
			t.Errorf("body %q: response = %s", body, rec.Body.String())
		}
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"email":"admin@lonecowry.com","password":"wrong"}`,
		`{"email":"nobody@lonecowry.com","password":"admin123"}`,
	} {
		rec := env.do(t, http.MethodPost, "/api/auth/login", body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Invalid email or password") {
			t.Errorf("response = %s", rec.Body.String())
		}
	}
}

func TestSessionRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/auth/login", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	success, data, _ := decodeEnvelope(t, rec)
	if !success {
		t.Fatalf("success = false, body = %s", rec.Body.String())
	}
	if !strings.Contains(string(data), "admin@lonecowry.com") {
		t.Errorf("session data = %s", data)
	}
}

func TestSessionNotAuthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/login", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	success, _, errMsg := decodeEnvelope(t, rec)
	if success || errMsg != "Not authenticated" {
		t.Errorf("envelope = (%v, %q), want (false, Not authenticated)", success, errMsg)
	}
}

func TestSessionInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/login", "",
		&http.Cookie{Name: "auth_token", Value: "tampered"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	success, _, errMsg := decodeEnvelope(t, rec)
	if success || errMsg != "Invalid token" {
		t.Errorf("envelope = (%v, %q), want (false, Invalid token)", success, errMsg)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/auth/logout", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"loggedOut":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			cleared = c
		}
	}
	if cleared == nil || cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Errorf("logout should expire the cookie, got %+v", cleared)
	}
}
