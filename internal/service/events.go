// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/store"
)

// EventService writes audit events. Failures are logged but never
// propagated; audit logging must not break the request path.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates an EventService over the given database.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{queries: store.New(db)}
}

// Log records an audit event with optional structured metadata.
func (s *EventService) Log(ctx context.Context, level, category, message string, metadata map[string]any) {
	meta := ""
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			meta = string(data)
		}
	}

	e := &model.Event{
		Level:     level,
		Category:  category,
		Message:   message,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.queries.CreateEvent(ctx, e); err != nil {
		slog.Error("writing audit event", "error", err, "message", message)
	}
}

// LogAuth records an authentication event.
func (s *EventService) LogAuth(ctx context.Context, message string, metadata map[string]any) {
	s.Log(ctx, model.EventLevelInfo, model.EventCategoryAuth, message, metadata)
}

// LogPost records a content change event.
func (s *EventService) LogPost(ctx context.Context, message string, metadata map[string]any) {
	s.Log(ctx, model.EventLevelInfo, model.EventCategoryPost, message, metadata)
}
