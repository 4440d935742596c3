// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic layer: post lifecycle
// management, credential verification, media uploads, and audit
// event logging.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/store"
	"github.com/lonecowry/cowry-cms/internal/util"
)

// DefaultListLimit caps unpaginated list queries.
const DefaultListLimit = 50

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("post not found")

// ErrValidation wraps input validation failures.
var ErrValidation = errors.New("validation failed")

// PostService owns the post lifecycle: slug and read-time derivation,
// status transitions, and the publishedAt stamp.
type PostService struct {
	queries *store.Queries
}

// NewPostService creates a PostService over the given database.
func NewPostService(db *sql.DB) *PostService {
	return &PostService{queries: store.New(db)}
}

// CreatePostInput carries the client-supplied fields for a new post.
type CreatePostInput struct {
	Title         string
	Excerpt       string
	Content       string
	Category      string
	CategoryLabel string
	Tags          []string
	Status        string
	Author        string
	AuthorID      string
	FeaturedImage string
	Icon          string
	Gradient      string
	ReadTime      int
	ScheduledFor  *time.Time
}

// UpdatePostInput carries a partial update. Nil fields are left
// untouched; non-nil fields overwrite the stored value.
type UpdatePostInput struct {
	Title         *string
	Excerpt       *string
	Content       *string
	Category      *string
	CategoryLabel *string
	Tags          []string
	Status        *string
	FeaturedImage *string
	Icon          *string
	Gradient      *string
	ReadTime      *int
	ScheduledFor  *time.Time
}

// Create validates input and inserts a new post. The slug and
// read-time are always derived server side; publishedAt is stamped
// only when the post is born published.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	if in.Title == "" || in.Content == "" || in.Category == "" {
		return nil, fmt.Errorf("%w: title, content and category are required", ErrValidation)
	}

	status := in.Status
	if status == "" {
		status = model.PostStatusDraft
	}
	if !model.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	label := in.CategoryLabel
	if label == "" {
		label = model.CategoryLabels[in.Category]
	}

	readTime := in.ReadTime
	if readTime <= 0 {
		readTime = util.ReadTime(in.Content)
	}

	now := time.Now().UTC()
	p := &model.Post{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Slug:          util.Slugify(in.Title),
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		Category:      in.Category,
		CategoryLabel: label,
		Tags:          in.Tags,
		Status:        status,
		Author:        in.Author,
		AuthorID:      in.AuthorID,
		FeaturedImage: in.FeaturedImage,
		Icon:          in.Icon,
		Gradient:      in.Gradient,
		ReadTime:      readTime,
		ScheduledFor:  in.ScheduledFor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == model.PostStatusPublished {
		p.PublishedAt = &now
	}

	if err := s.queries.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial update to an existing post using
// read-merge-write. The whole row is rewritten, so concurrent updates
// are last-writer-wins.
//
// Derived fields follow their sources: a new title rederives the
// slug, new content rederives the read-time unless the caller set it
// explicitly. The publishedAt stamp is written once, on the first
// transition into published, and never changes afterwards.
func (s *PostService) Update(ctx context.Context, id string, in UpdatePostInput) (*model.Post, error) {
	p, err := s.queries.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
		p.Slug = util.Slugify(*in.Title)
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		p.Content = *in.Content
		if in.ReadTime == nil {
			p.ReadTime = util.ReadTime(*in.Content)
		}
	}
	if in.Category != nil {
		p.Category = *in.Category
		if in.CategoryLabel == nil {
			p.CategoryLabel = model.CategoryLabels[*in.Category]
		}
	}
	if in.CategoryLabel != nil {
		p.CategoryLabel = *in.CategoryLabel
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.FeaturedImage != nil {
		p.FeaturedImage = *in.FeaturedImage
	}
	if in.Icon != nil {
		p.Icon = *in.Icon
	}
	if in.Gradient != nil {
		p.Gradient = *in.Gradient
	}
	if in.ReadTime != nil {
		p.ReadTime = *in.ReadTime
	}
	if in.ScheduledFor != nil {
		p.ScheduledFor = in.ScheduledFor
	}

	now := time.Now().UTC()
	if in.Status != nil {
		if !model.IsValidStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
		}
		p.Status = *in.Status
		if p.Status == model.PostStatusPublished && p.PublishedAt == nil {
			p.PublishedAt = &now
		}
	}
	p.UpdatedAt = now

	if err := s.queries.UpdatePost(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByID fetches a single post by id.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.queries.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetBySlug fetches a single post by slug. When several posts share a
// slug, the oldest wins.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	p, err := s.queries.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns posts filtered by status and category, newest first.
// Status filtering uses the indexed query path; category filtering is
// applied in memory after the fetch.
func (s *PostService) List(ctx context.Context, status, category string, limit int) ([]*model.Post, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	var posts []*model.Post
	var err error
	if status != "" {
		posts, err = s.queries.ListPostsByStatus(ctx, status, limit)
	} else {
		posts, err = s.queries.ListPosts(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	if category != "" {
		filtered := posts[:0]
		for _, p := range posts {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].SortKey().After(posts[j].SortKey())
	})

	if posts == nil {
		posts = []*model.Post{}
	}
	return posts, nil
}

// Delete removes a post by id.
func (s *PostService) Delete(ctx context.Context, id string) error {
	err := s.queries.DeletePost(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// DashboardStats aggregates post counts by status.
func (s *PostService) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	counts, err := s.queries.CountPostsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		PublishedPosts: counts[model.PostStatusPublished],
		DraftPosts:     counts[model.PostStatusDraft],
		ScheduledPosts: counts[model.PostStatusScheduled],
	}
	for _, n := range counts {
		stats.TotalPosts += n
	}
	return stats, nil
}
