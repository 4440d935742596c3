// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lonecowry/cowry-cms/internal/model"
)

// CreateEvent appends an audit event row.
func (q *Queries) CreateEvent(ctx context.Context, e *model.Event) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO events (level, category, message, meta, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.Level, e.Category, e.Message, e.Meta, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// ListRecentEvents returns the newest events, up to limit.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int) ([]*model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, meta, created_at
		FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// PurgeEventsBefore deletes events older than the cutoff, returning
// the number of rows removed.
func (q *Queries) PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging events: %w", err)
	}
	return res.RowsAffected()
}
