// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/lonecowry/cowry-cms/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "cowry-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func testPost(id, status string, publishedAt *time.Time, createdAt time.Time) *model.Post {
	return &model.Post{
		ID:            id,
		Title:         "Post " + id,
		Slug:          "post-" + id,
		Content:       "content",
		Category:      model.CategoryAIML,
		CategoryLabel: model.CategoryLabels[model.CategoryAIML],
		Tags:          []string{"one", "two"},
		Status:        status,
		Author:        "Benedict Mbakogu",
		AuthorID:      "demo-admin-001",
		ReadTime:      1,
		PublishedAt:   publishedAt,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestCreateAndGetPost(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now().UTC().Truncate(time.Second)
	p := testPost("p1", model.PostStatusPublished, &now, now)

	if err := q.CreatePost(ctx, p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	got, err := q.GetPostByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if got.Title != p.Title || got.Slug != p.Slug || got.Status != p.Status {
		t.Errorf("got %+v, want %+v", got, p)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "one" {
		t.Errorf("Tags = %v, want [one two]", got.Tags)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(now) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, now)
	}

	bySlug, err := q.GetPostBySlug(ctx, "post-p1")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if bySlug.ID != "p1" {
		t.Errorf("GetPostBySlug ID = %q, want p1", bySlug.ID)
	}
}

func TestGetPostBySlugOldestWins(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	a := testPost("a", model.PostStatusDraft, nil, older)
	b := testPost("b", model.PostStatusDraft, nil, newer)
	a.Slug = "shared-slug"
	b.Slug = "shared-slug"

	for _, p := range []*model.Post{b, a} {
		if err := q.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	got, err := q.GetPostBySlug(ctx, "shared-slug")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("slug collision winner = %q, want a (oldest)", got.ID)
	}
}

func TestListPostsByStatusOrder(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	t1 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	posts := []*model.Post{
		testPost("old", model.PostStatusPublished, &t1, t1),
		testPost("new", model.PostStatusPublished, &t3, t3),
		testPost("mid", model.PostStatusPublished, &t2, t2),
		testPost("draft", model.PostStatusDraft, nil, t3),
	}
	for _, p := range posts {
		if err := q.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	got, err := q.ListPostsByStatus(ctx, model.PostStatusPublished, 50)
	if err != nil {
		t.Fatalf("ListPostsByStatus: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantOrder := []string{"new", "mid", "old"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, got[i].ID, id)
		}
	}

	limited, err := q.ListPostsByStatus(ctx, model.PostStatusPublished, 2)
	if err != nil {
		t.Fatalf("ListPostsByStatus limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited len = %d, want 2", len(limited))
	}
}

func TestUpdatePost(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now().UTC().Truncate(time.Second)
	p := testPost("p1", model.PostStatusDraft, nil, now)
	if err := q.CreatePost(ctx, p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	p.Title = "Updated Title"
	p.Status = model.PostStatusPublished
	p.PublishedAt = &now
	if err := q.UpdatePost(ctx, p); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}

	got, err := q.GetPostByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if got.Title != "Updated Title" || got.Status != model.PostStatusPublished {
		t.Errorf("update not persisted: %+v", got)
	}

	missing := testPost("nope", model.PostStatusDraft, nil, now)
	if err := q.UpdatePost(ctx, missing); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("UpdatePost missing = %v, want sql.ErrNoRows", err)
	}
}

func TestDeletePost(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now().UTC()
	if err := q.CreatePost(ctx, testPost("p1", model.PostStatusDraft, nil, now)); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := q.DeletePost(ctx, "p1"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := q.GetPostByID(ctx, "p1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPostByID after delete = %v, want sql.ErrNoRows", err)
	}

	if err := q.DeletePost(ctx, "p1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("DeletePost again = %v, want sql.ErrNoRows", err)
	}
}

func TestListDuePosts(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := testPost("due", model.PostStatusScheduled, nil, now)
	due.ScheduledFor = &past
	notYet := testPost("notyet", model.PostStatusScheduled, nil, now)
	notYet.ScheduledFor = &future
	draft := testPost("draft", model.PostStatusDraft, nil, now)

	for _, p := range []*model.Post{due, notYet, draft} {
		if err := q.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	got, err := q.ListDuePosts(ctx, now)
	if err != nil {
		t.Fatalf("ListDuePosts: %v", err)
	}
	if len(got) != 1 || got[0].ID != "due" {
		t.Errorf("ListDuePosts = %v, want [due]", got)
	}
}

func TestCountPostsByStatus(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now().UTC()
	posts := []*model.Post{
		testPost("a", model.PostStatusPublished, &now, now),
		testPost("b", model.PostStatusPublished, &now, now),
		testPost("c", model.PostStatusDraft, nil, now),
	}
	for _, p := range posts {
		if err := q.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	counts, err := q.CountPostsByStatus(ctx)
	if err != nil {
		t.Fatalf("CountPostsByStatus: %v", err)
	}
	if counts[model.PostStatusPublished] != 2 {
		t.Errorf("published = %d, want 2", counts[model.PostStatusPublished])
	}
	if counts[model.PostStatusDraft] != 1 {
		t.Errorf("draft = %d, want 1", counts[model.PostStatusDraft])
	}
	if counts[model.PostStatusScheduled] != 0 {
		t.Errorf("scheduled = %d, want 0", counts[model.PostStatusScheduled])
	}
}

func TestUserEmailCaseInsensitive(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	u := &model.User{
		ID:           "u1",
		Email:        "Admin@LoneCowry.com",
		PasswordHash: "hash",
		Name:         "Admin",
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := q.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := q.GetUserByEmail(ctx, "admin@lonecowry.com")
	if err != nil {
		t.Fatalf("GetUserByEmail lowercase: %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("ID = %q, want u1", got.ID)
	}
}

func TestSeedCreatesDefaultAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	q := New(db)
	user, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user.ID != DefaultAdminID {
		t.Errorf("ID = %q, want %q", user.ID, DefaultAdminID)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want admin", user.Role)
	}

	// Seeding twice must not duplicate
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	n, err := q.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 1 {
		t.Errorf("CountUsers = %d, want 1", n)
	}
}

func TestEnsureUserCreatesOnce(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	created, err := EnsureUser(ctx, db, "ops@lonecowry.com", "s3cret-pass", "Ops", model.RoleAdmin)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if created.ID == "" || created.Email != "ops@lonecowry.com" {
		t.Errorf("created = %+v", created)
	}
	if created.PasswordHash == "s3cret-pass" {
		t.Error("password stored in the clear")
	}

	// A second call with different credentials keeps the existing account
	again, err := EnsureUser(ctx, db, "ops@lonecowry.com", "other-pass", "Other", model.RoleEditor)
	if err != nil {
		t.Fatalf("second EnsureUser: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("ID = %q, want existing %q", again.ID, created.ID)
	}
	if again.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin kept", again.Role)
	}

	n, err := New(db).CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 1 {
		t.Errorf("CountUsers = %d, want 1", n)
	}
}

func TestSeedDemoIdempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := SeedDemo(ctx, db); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	if err := SeedDemo(ctx, db); err != nil {
		t.Fatalf("second SeedDemo: %v", err)
	}

	counts, err := New(db).CountPostsByStatus(ctx)
	if err != nil {
		t.Fatalf("CountPostsByStatus: %v", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 3 {
		t.Errorf("total posts = %d, want 3", total)
	}
}

func TestCreateEvent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	e := &model.Event{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryAuth,
		Message:   "user logged in",
		Meta:      `{"email":"admin@lonecowry.com"}`,
		CreatedAt: time.Now().UTC(),
	}
	if err := q.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	events, err := q.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 || events[0].Message != "user logged in" {
		t.Errorf("events = %v", events)
	}
}
