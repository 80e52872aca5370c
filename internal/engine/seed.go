// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"time"

	"github.com/olegiv/metalmaster-go/internal/localcache"
	"github.com/olegiv/metalmaster-go/internal/model"
)

// SeedDefaultUsers ensures the root administrator and a demo user
// exist. Seeding is keyed by email, so calling it on every startup
// never duplicates accounts. Returns how many users were added.
func (e *Engine) SeedDefaultUsers(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seed := []model.User{
		{
			Name:     "Отец (Администратор)",
			Email:    e.rootEmail,
			Password: "father123",
			Phone:    "+7 (999) 123-45-67",
			Role:     model.RoleAdmin,
		},
		{
			Name:     "Иван Петров",
			Email:    "user@example.com",
			Password: "user123",
			Phone:    "+7 (999) 765-43-21",
			Role:     model.RoleUser,
		},
	}

	existing := make(map[string]bool, len(e.data.Users))
	for _, u := range e.data.Users {
		existing[u.Email] = true
	}

	added := 0
	for _, u := range seed {
		if existing[u.Email] {
			continue
		}
		u.ID = e.nextID()
		u.DateRegistered = time.Now().UTC()
		e.data.Users = append(e.data.Users, u)
		added++
	}

	if added == 0 {
		return 0, nil
	}
	if err := e.writeCacheJSON(ctx, localcache.KeyUsers, e.data.Users); err != nil {
		return added, err
	}
	e.log.Info("seeded default users", "added", added)
	return added, nil
}
