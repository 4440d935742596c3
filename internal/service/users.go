// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lonecowry/cowry-cms/internal/auth"
	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/store"
)

// UserService handles account lookup and credential verification.
type UserService struct {
	queries *store.Queries
}

// NewUserService creates a UserService over the given database.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{queries: store.New(db)}
}

// VerifyCredentials checks an email/password pair. It returns
// (nil, nil) for both unknown accounts and wrong passwords, so
// callers cannot distinguish the two cases.
//
// Hashes created with outdated parameters are transparently upgraded
// on successful login.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn comparable time so missing accounts are not
			// detectable by response latency.
			_, _ = auth.CheckPassword(password, dummyHash)
			return nil, nil
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPasswordHash(ctx, user.ID, newHash); err != nil {
				slog.Warn("rehashing credentials failed", "user", user.ID, "error", err)
			}
		}
	}

	return user, nil
}

// GetByID fetches a user by primary key. Returns (nil, nil) when the
// account does not exist.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// dummyHash is a throwaway argon2id hash used to equalize timing for
// unknown accounts. The plaintext is random and not stored anywhere.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
