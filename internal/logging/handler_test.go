// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/store"
	"github.com/lonecowry/cowry-cms/internal/testutil"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return db
}

func recentEvents(t *testing.T, db *sql.DB) []*model.Event {
	t.Helper()
	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	return events
}

func TestWarnMirroredToEventLog(t *testing.T) {
	db := testDB(t)
	inner := slog.NewTextHandler(io.Discard, nil)
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Warn("login failed", "category", model.EventCategoryAuth, "ip", "203.0.113.9")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.Level != model.EventLevelWarn {
		t.Errorf("level = %q, want WARN", e.Level)
	}
	if e.Category != model.EventCategoryAuth {
		t.Errorf("category = %q, want auth", e.Category)
	}
	if e.Message != "login failed" {
		t.Errorf("message = %q", e.Message)
	}
	if e.Meta != `{"ip":"203.0.113.9"}` {
		t.Errorf("meta = %q", e.Meta)
	}
}

func TestInfoNotMirrored(t *testing.T) {
	db := testDB(t)
	inner := slog.NewTextHandler(io.Discard, nil)
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Info("server started")

	if events := recentEvents(t, db); len(events) != 0 {
		t.Errorf("events = %d, want 0 for INFO", len(events))
	}
}

func TestCustomThreshold(t *testing.T) {
	db := testDB(t)
	inner := slog.NewTextHandler(io.Discard, nil)
	logger := slog.New(NewEventLogHandlerWithLevel(inner, db, slog.LevelInfo))

	logger.Info("scheduler tick")

	if events := recentEvents(t, db); len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
}

func TestCategoryInferredFromMessage(t *testing.T) {
	db := testDB(t)
	inner := slog.NewTextHandler(io.Discard, nil)
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Error("upload rejected")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Category != model.EventCategoryMedia {
		t.Errorf("category = %q, want media", events[0].Category)
	}
	if events[0].Level != model.EventLevelError {
		t.Errorf("level = %q, want ERROR", events[0].Level)
	}
}
