// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lonecowry/cowry-cms/internal/auth"
	"github.com/lonecowry/cowry-cms/internal/model"
)

// Default admin credentials, created only when the users table is empty.
const (
	DefaultAdminID       = "demo-admin-001"
	DefaultAdminEmail    = "admin@lonecowry.com"
	DefaultAdminPassword = "admin123"
	DefaultAdminName     = "Benedict Mbakogu"
)

// Seed creates initial data in the database.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	n, err := queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("checking for existing users: %w", err)
	}
	if n > 0 {
		slog.Info("users already exist, skipping seed")
		return nil
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		ID:           DefaultAdminID,
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Name:         DefaultAdminName,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := queries.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
	)

	return nil
}

// EnsureUser creates a user with the given credentials if no account
// exists for the email yet. Used to provision the operator account at
// startup.
func EnsureUser(ctx context.Context, db *sql.DB, email, password, name, role string) (*model.User, error) {
	queries := New(db)

	existing, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checking for user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		ID:           newUserID(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := queries.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func newUserID() string {
	return "user-" + uuid.NewString()
}
