// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"

	"github.com/olegiv/metalmaster-go/internal/fault"
	"github.com/olegiv/metalmaster-go/internal/localcache"
	"github.com/olegiv/metalmaster-go/internal/model"
)

// Settings returns the current site settings.
func (e *Engine) Settings() model.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.Settings
}

// UpdateSettings merges non-empty fields of the submission into the
// settings singleton. Admin only.
func (e *Engine) UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	if !e.isAdmin() {
		return model.Settings{}, fault.Authorization("only administrators can change site settings")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.data.Settings = e.data.Settings.Merge(settings)
	if err := e.writeCacheJSON(ctx, localcache.KeySettings, e.data.Settings); err != nil {
		return model.Settings{}, err
	}
	e.pushRemote()

	return e.data.Settings, nil
}
