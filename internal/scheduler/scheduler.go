// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background jobs: publishing posts whose
// scheduled time has arrived, and pruning old audit events.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/store"
)

// eventRetention is how long audit events are kept before the daily
// purge removes them.
const eventRetention = 90 * 24 * time.Hour

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler over the given database.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the jobs and begins the cron loop. Scheduled posts
// are checked every minute; events are purged once a day.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.PublishDuePosts(context.Background()); err != nil {
			s.logger.Error("processing scheduled posts failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc("30 3 * * *", func() {
		if err := s.purgeOldEvents(context.Background()); err != nil {
			s.logger.Error("purging old events failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish and stops the cron loop.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PublishDuePosts promotes every scheduled post whose time has come.
// Exported so it can be driven directly outside the cron loop.
func (s *Scheduler) PublishDuePosts(ctx context.Context) error {
	queries := store.New(s.db)
	now := time.Now().UTC()

	due, err := queries.ListDuePosts(ctx, now)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	s.logger.Info("processing scheduled posts", "count", len(due))

	for _, p := range due {
		if err := s.publishPost(ctx, queries, p, now); err != nil {
			s.logger.Error("publishing scheduled post failed",
				"post_id", p.ID,
				"title", p.Title,
				"error", err,
			)
			continue
		}
		s.logger.Info("published scheduled post",
			"post_id", p.ID,
			"title", p.Title,
			"scheduled_for", p.ScheduledFor,
		)
	}
	return nil
}

// publishPost flips one post to published and records the audit event
// in the same transaction. An earlier publishedAt stamp, left by a
// previous publish, is preserved.
func (s *Scheduler) publishPost(ctx context.Context, queries *store.Queries, p *model.Post, now time.Time) error {
	p.Status = model.PostStatusPublished
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	p.ScheduledFor = nil
	p.UpdatedAt = now

	meta, err := json.Marshal(map[string]any{"post_id": p.ID, "slug": p.Slug})
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := queries.WithTx(tx)
	if err := qtx.UpdatePost(ctx, p); err != nil {
		return err
	}
	if err := qtx.CreateEvent(ctx, &model.Event{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryPost,
		Message:   "scheduled post published",
		Meta:      string(meta),
		CreatedAt: now,
	}); err != nil {
		return err
	}
	return tx.Commit()
}

// purgeOldEvents deletes audit events older than the retention window.
func (s *Scheduler) purgeOldEvents(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-eventRetention)
	n, err := store.New(s.db).PurgeEventsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("purged old events", "count", n, "cutoff", cutoff)
	}
	return nil
}
