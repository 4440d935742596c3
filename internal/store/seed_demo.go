// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/util"
)

// SeedDemo creates sample blog posts for showcasing the site.
// Called after Seed() when COWRY_DEMO_MODE=true. It is a no-op when
// any posts already exist.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	counts, err := queries.CountPostsByStatus(ctx)
	if err != nil {
		return fmt.Errorf("checking for existing posts: %w", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total > 0 {
		slog.Info("posts already exist, skipping demo seed")
		return nil
	}

	slog.Info("seeding demo content")

	published := func(year, month, day int) *time.Time {
		t := time.Date(year, time.Month(month), day, 9, 0, 0, 0, time.UTC)
		return &t
	}

	demos := []*model.Post{
		{
			ID:       "demo-post-001",
			Title:    "The Future of Agentic AI in Enterprise",
			Excerpt:  "Exploring how autonomous AI agents are transforming enterprise workflows, from customer support to supply chain optimization.",
			Content:  "Autonomous AI agents are moving from research demos into production systems. Enterprises that treat agents as first-class workers, with scoped permissions, audit trails, and human escalation paths, are seeing the largest gains.\n\nThis post looks at the architectural patterns behind reliable agentic deployments and where the technology still falls short.",
			Category: model.CategoryAIML,
			Status:   model.PostStatusPublished,
			Tags:     []string{"ai", "agents", "enterprise"},
			Icon:     "Cpu",
			Gradient: "from-blue-500 to-cyan-500",
			PublishedAt: published(2026, 2, 10),
			CreatedAt:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:       "demo-post-002",
			Title:    "Defense Tech: Drone Innovation in 2026",
			Excerpt:  "How Lone Cowry Labs is advancing ISR capabilities with autonomous aerial platforms.",
			Content:  "Intelligence, surveillance, and reconnaissance platforms are getting smaller, cheaper, and smarter. We walk through the sensor fusion stack powering the current generation of autonomous drones and the regulatory landscape shaping what ships next.",
			Category: model.CategoryDefense,
			Status:   model.PostStatusDraft,
			Tags:     []string{"defense", "drones", "isr"},
			Icon:     "Shield",
			Gradient: "from-orange-500 to-red-500",
			CreatedAt: time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:       "demo-post-003",
			Title:    "Cloud Migration: AWS vs Azure vs GCP",
			Excerpt:  "A comprehensive comparison guide for enterprise cloud migration, covering cost, compliance, and lock-in.",
			Content:  "Choosing a cloud provider is less about feature checklists and more about organizational fit. This guide compares the three major platforms across cost modeling, compliance certifications, data gravity, and exit strategy.",
			Category: model.CategoryData,
			Status:   model.PostStatusPublished,
			Tags:     []string{"cloud", "aws", "azure", "gcp"},
			Icon:     "Cloud",
			Gradient: "from-purple-500 to-pink-500",
			PublishedAt: published(2026, 2, 5),
			CreatedAt:   time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, p := range demos {
		p.Slug = util.Slugify(p.Title)
		p.CategoryLabel = model.CategoryLabels[p.Category]
		p.Author = DefaultAdminName
		p.AuthorID = DefaultAdminID
		p.ReadTime = util.ReadTime(p.Content)
		p.UpdatedAt = p.CreatedAt

		if err := queries.CreatePost(ctx, p); err != nil {
			return fmt.Errorf("creating demo post %s: %w", p.ID, err)
		}
	}

	slog.Info("demo content seeded", "posts", len(demos))
	return nil
}
