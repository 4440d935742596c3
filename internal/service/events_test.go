// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/store"
)

func TestLogWritesEvent(t *testing.T) {
	db := serviceDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	svc.Log(ctx, model.EventLevelWarn, model.EventCategorySystem, "disk almost full", map[string]any{
		"free_mb": 42,
	})

	events, err := store.New(db).ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, model.EventLevelWarn, e.Level)
	assert.Equal(t, model.EventCategorySystem, e.Category)
	assert.Equal(t, "disk almost full", e.Message)
	assert.JSONEq(t, `{"free_mb":42}`, e.Meta)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestLogAuthAndLogPostCategories(t *testing.T) {
	db := serviceDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	svc.LogAuth(ctx, "admin logged in", nil)
	svc.LogPost(ctx, "post created", map[string]any{"slug": "launch-day"})

	events, err := store.New(db).ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	categories := []string{events[0].Category, events[1].Category}
	assert.Contains(t, categories, model.EventCategoryAuth)
	assert.Contains(t, categories, model.EventCategoryPost)
}

func TestLogSurvivesClosedDatabase(t *testing.T) {
	db := serviceDB(t)
	svc := NewEventService(db)
	require.NoError(t, db.Close())

	// Must not panic or return an error to the caller.
	svc.Log(context.Background(), model.EventLevelError, model.EventCategorySystem, "unreachable", nil)
}
