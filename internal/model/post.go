// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the core domain types shared across the
// application: blog posts, users, and audit events.
package model

import "time"

// Post publication statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusScheduled = "scheduled"
)

// Post categories. The slug form is stored; the label is display text.
const (
	CategoryAIML          = "ai-ml"
	CategoryDefense       = "defense"
	CategoryQuantum       = "quantum"
	CategoryData          = "data"
	CategoryCybersecurity = "cybersecurity"
	CategoryTelecom       = "telecom"
)

// CategoryLabels maps category slugs to their display labels.
var CategoryLabels = map[string]string{
	CategoryAIML:          "AI & Machine Learning",
	CategoryDefense:       "Defense Technology",
	CategoryQuantum:       "Quantum Computing",
	CategoryData:          "Data Analytics",
	CategoryCybersecurity: "Cybersecurity",
	CategoryTelecom:       "Telecommunications",
}

// Post represents a blog post.
//
// PublishedAt is set exactly once, on the first transition into the
// published status, and is never cleared or rewritten afterwards.
type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Content       string     `json:"content"`
	ContentHTML   string     `json:"contentHtml,omitempty"`
	Category      string     `json:"category"`
	CategoryLabel string     `json:"categoryLabel,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Status        string     `json:"status"`
	Author        string     `json:"author,omitempty"`
	AuthorID      string     `json:"authorId,omitempty"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Icon          string     `json:"icon,omitempty"`
	Gradient      string     `json:"gradient,omitempty"`
	ReadTime      int        `json:"readTime"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	ScheduledFor  *time.Time `json:"scheduledFor,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// SortKey returns the timestamp used for reverse-chronological
// ordering: the publication time when present, otherwise creation time.
func (p *Post) SortKey() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// IsValidStatus reports whether s is a recognized post status.
func IsValidStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled:
		return true
	}
	return false
}

// IsValidCategory reports whether c is a recognized category slug.
func IsValidCategory(c string) bool {
	_, ok := CategoryLabels[c]
	return ok
}

// DashboardStats summarizes post counts by status for the admin
// dashboard.
type DashboardStats struct {
	TotalPosts     int `json:"totalPosts"`
	PublishedPosts int `json:"publishedPosts"`
	DraftPosts     int `json:"draftPosts"`
	ScheduledPosts int `json:"scheduledPosts"`
}
