// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestProtection() *LoginProtection {
	return NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100, // Effectively no IP limiting in unit tests
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   10 * time.Minute,
		AttemptWindow:     10 * time.Minute,
	})
}

func TestAccountLockoutAfterMaxFailures(t *testing.T) {
	lp := newTestProtection()
	email := "admin@lonecowry.com"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("fresh account should not be locked")
	}

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	locked, dur := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("third failure should lock the account")
	}
	if dur != 10*time.Minute {
		t.Errorf("lock duration = %v, want 10m", dur)
	}

	if locked, remaining := lp.IsAccountLocked(email); !locked || remaining <= 0 {
		t.Errorf("IsAccountLocked = (%v, %v), want locked with remaining time", locked, remaining)
	}
}

func TestLockoutBackoffDoubles(t *testing.T) {
	lp := newTestProtection()
	email := "admin@lonecowry.com"

	var dur time.Duration
	for i := 0; i < 3; i++ {
		_, dur = lp.RecordFailedAttempt(email)
	}
	if dur != 10*time.Minute {
		t.Fatalf("first lockout = %v, want 10m", dur)
	}

	// Second lockout doubles
	lp.failedAttempts[email].lockedUntil = time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		_, dur = lp.RecordFailedAttempt(email)
	}
	if dur != 20*time.Minute {
		t.Errorf("second lockout = %v, want 20m", dur)
	}
}

func TestSuccessfulLoginClearsAttempts(t *testing.T) {
	lp := newTestProtection()
	email := "admin@lonecowry.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	if got := lp.GetRemainingAttempts(email); got != 1 {
		t.Errorf("remaining = %d, want 1", got)
	}

	lp.RecordSuccessfulLogin(email)
	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining after success = %d, want 3", got)
	}
}

func TestLoginProtectionMiddlewareRateLimits(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       0.001, // Effectively one request per burst window
		IPBurst:           2,
		MaxFailedAttempts: 5,
	})

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.1.2.3:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first two requests = %v, want 200", statuses[:2])
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", statuses[2])
	}
}

func TestLoginProtectionMiddlewareIgnoresGet(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 1})

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
		req.RemoteAddr = "10.1.2.3:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET request %d = %d, want 200", i, rec.Code)
		}
	}
}
