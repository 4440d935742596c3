// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/render"
	"github.com/lonecowry/cowry-cms/internal/service"
)

type createPostRequest struct {
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	Category      string     `json:"category"`
	CategoryLabel string     `json:"categoryLabel"`
	Tags          []string   `json:"tags"`
	Status        string     `json:"status"`
	FeaturedImage string     `json:"featuredImage"`
	Icon          string     `json:"icon"`
	Gradient      string     `json:"gradient"`
	ReadTime      int        `json:"readTime"`
	ScheduledFor  *time.Time `json:"scheduledFor"`
}

type updatePostRequest struct {
	Title         *string    `json:"title"`
	Excerpt       *string    `json:"excerpt"`
	Content       *string    `json:"content"`
	Category      *string    `json:"category"`
	CategoryLabel *string    `json:"categoryLabel"`
	Tags          []string   `json:"tags"`
	Status        *string    `json:"status"`
	FeaturedImage *string    `json:"featuredImage"`
	Icon          *string    `json:"icon"`
	Gradient      *string    `json:"gradient"`
	ReadTime      *int       `json:"readTime"`
	ScheduledFor  *time.Time `json:"scheduledFor"`
}

// ListPosts handles GET /api/posts. With stats=true it returns
// dashboard counters instead of a post list. Anonymous callers are
// always pinned to published posts, whatever status they ask for.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("stats") == "true" {
		stats, err := h.posts.DashboardStats(r.Context())
		if err != nil {
			slog.Error("loading dashboard stats", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		WriteSuccess(w, stats)
		return
	}

	status := q.Get("status")
	if h.sessionUser(r) == nil {
		status = model.PostStatusPublished
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	posts, err := h.posts.List(r.Context(), status, q.Get("category"), limit)
	if err != nil {
		slog.Error("listing posts", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	WriteSuccess(w, posts)
}

// CreatePost handles POST /api/posts. Requires a session; the post's
// author fields come from the verified identity, never the body.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(r)

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	post, err := h.posts.Create(r.Context(), service.CreatePostInput{
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Category:      req.Category,
		CategoryLabel: req.CategoryLabel,
		Tags:          req.Tags,
		Status:        req.Status,
		Author:        user.Name,
		AuthorID:      user.ID,
		FeaturedImage: req.FeaturedImage,
		Icon:          req.Icon,
		Gradient:      req.Gradient,
		ReadTime:      req.ReadTime,
		ScheduledFor:  req.ScheduledFor,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			WriteError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		slog.Error("creating post", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.events.LogPost(r.Context(), "post created", map[string]any{
		"id": post.ID, "title": post.Title, "author": user.Email,
	})

	WriteCreated(w, post)
}

// GetPost handles GET /api/posts/{id}. With bySlug=true the path
// segment is treated as a slug. Drafts and scheduled posts are hidden
// from anonymous callers, indistinguishably from posts that do not
// exist. The response includes rendered HTML alongside the raw
// content.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")

	var post *model.Post
	var err error
	if r.URL.Query().Get("bySlug") == "true" {
		post, err = h.posts.GetBySlug(r.Context(), key)
	} else {
		post, err = h.posts.GetByID(r.Context(), key)
	}
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Post not found")
			return
		}
		slog.Error("loading post", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !post.IsPublished() && h.sessionUser(r) == nil {
		WriteError(w, http.StatusNotFound, "Post not found")
		return
	}

	if html, err := render.PostHTML(post.Content); err == nil {
		post.ContentHTML = html
	} else {
		slog.Warn("rendering post content", "id", post.ID, "error", err)
	}

	WriteSuccess(w, post)
}

// UpdatePost handles PUT /api/posts/{id}. The body is a partial
// document: absent fields keep their stored values.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.posts.Update(r.Context(), id, service.UpdatePostInput{
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Category:      req.Category,
		CategoryLabel: req.CategoryLabel,
		Tags:          req.Tags,
		Status:        req.Status,
		FeaturedImage: req.FeaturedImage,
		Icon:          req.Icon,
		Gradient:      req.Gradient,
		ReadTime:      req.ReadTime,
		ScheduledFor:  req.ScheduledFor,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			WriteError(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, service.ErrValidation):
			WriteError(w, http.StatusBadRequest, "Invalid request body")
		default:
			slog.Error("updating post", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.events.LogPost(r.Context(), "post updated", map[string]any{"id": post.ID})

	WriteSuccess(w, post)
}

// DeletePost handles DELETE /api/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.posts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Post not found")
			return
		}
		slog.Error("deleting post", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.events.LogPost(r.Context(), "post deleted", map[string]any{"id": id})

	WriteSuccess(w, map[string]bool{"deleted": true})
}
