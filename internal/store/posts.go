// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/util"
)

const postColumns = `id, title, slug, excerpt, content, category, category_label,
	tags, status, author, author_id, featured_image, icon, gradient, read_time,
	published_at, scheduled_for, created_at, updated_at`

// scanPost reads one post row. Tags are stored as a JSON array.
func scanPost(row interface{ Scan(...any) error }) (*model.Post, error) {
	var p model.Post
	var tags string
	var publishedAt, scheduledFor sql.NullTime

	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category, &p.CategoryLabel,
		&tags, &p.Status, &p.Author, &p.AuthorID, &p.FeaturedImage, &p.Icon, &p.Gradient, &p.ReadTime,
		&publishedAt, &scheduledFor, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for post %s: %w", p.ID, err)
		}
	}
	p.PublishedAt = util.TimePtrFromNull(publishedAt)
	p.ScheduledFor = util.TimePtrFromNull(scheduledFor)

	return &p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(data), nil
}

// CreatePost inserts a new post row.
func (q *Queries) CreatePost(ctx context.Context, p *model.Post) error {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.Category, p.CategoryLabel,
		tags, p.Status, p.Author, p.AuthorID, p.FeaturedImage, p.Icon, p.Gradient, p.ReadTime,
		util.NullTimeFromPtr(p.PublishedAt), util.NullTimeFromPtr(p.ScheduledFor),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	return nil
}

// GetPostByID fetches a single post by primary key.
func (q *Queries) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPostBySlug fetches the oldest post carrying the given slug.
// Slugs are not unique; the first created wins a collision.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = ? ORDER BY created_at LIMIT 1`, slug)
	return scanPost(row)
}

// ListPosts returns up to limit posts across all statuses, newest first
// by publication time with creation time as fallback.
func (q *Queries) ListPosts(ctx context.Context, limit int) ([]*model.Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListPostsByStatus returns up to limit posts with the given status,
// newest first. This is the indexed path behind the public blog.
func (q *Queries) ListPostsByStatus(ctx context.Context, status string, limit int) ([]*model.Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE status = ?
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT ?`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("listing posts by status: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListDuePosts returns scheduled posts whose publish time has arrived.
func (q *Queries) ListDuePosts(ctx context.Context, now time.Time) ([]*model.Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?`,
		model.PostStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("listing due posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]*model.Post, error) {
	var posts []*model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UpdatePost writes the full row for an existing post. The caller is
// responsible for merging partial changes first; the write itself is
// last-writer-wins.
func (q *Queries) UpdatePost(ctx context.Context, p *model.Post) error {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE posts SET
			title = ?, slug = ?, excerpt = ?, content = ?, category = ?,
			category_label = ?, tags = ?, status = ?, author = ?, author_id = ?,
			featured_image = ?, icon = ?, gradient = ?, read_time = ?,
			published_at = ?, scheduled_for = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Slug, p.Excerpt, p.Content, p.Category,
		p.CategoryLabel, tags, p.Status, p.Author, p.AuthorID,
		p.FeaturedImage, p.Icon, p.Gradient, p.ReadTime,
		util.NullTimeFromPtr(p.PublishedAt), util.NullTimeFromPtr(p.ScheduledFor),
		p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePost removes a post by id. Returns sql.ErrNoRows when no row
// matched.
func (q *Queries) DeletePost(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountPostsByStatus returns a status -> count map over all posts.
func (q *Queries) CountPostsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM posts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
