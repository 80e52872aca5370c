// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"

	"github.com/olegiv/metalmaster-go/internal/fault"
	"github.com/olegiv/metalmaster-go/internal/localcache"
)

// Theme values. Dark is the default.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme returns the persisted theme preference.
func (e *Engine) Theme() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.theme
}

// SetTheme persists a theme preference.
func (e *Engine) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fault.Validation("unknown theme %q", theme)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.theme = theme
	return e.cache.Set(ctx, localcache.KeyTheme, theme)
}

// ToggleTheme flips between dark and light and returns the new value.
func (e *Engine) ToggleTheme(ctx context.Context) (string, error) {
	next := ThemeDark
	if e.Theme() == ThemeDark {
		next = ThemeLight
	}
	return next, e.SetTheme(ctx, next)
}
