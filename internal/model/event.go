// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event severity levels, matching log/slog levels.
const (
	EventLevelInfo  = "INFO"
	EventLevelWarn  = "WARN"
	EventLevelError = "ERROR"
)

// Event categories.
const (
	EventCategoryAuth   = "auth"
	EventCategoryPost   = "post"
	EventCategoryMedia  = "media"
	EventCategorySystem = "system"
)

// Event is a persisted audit record. Rows are written for auth
// activity, content changes, and any WARN-or-above log entry.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Meta      string    `json:"meta,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
