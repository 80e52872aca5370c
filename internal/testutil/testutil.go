// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the MetalMaster
// project.
package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/olegiv/metalmaster-go/internal/localcache"
)

// TestLogger creates a silent test logger that only outputs warnings
// and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error
// level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestCache creates an in-memory local cache with the given capacity
// (0 = unlimited) and registers cleanup.
func TestCache(t *testing.T, capacity int64) *localcache.MemoryCache {
	t.Helper()

	cache := localcache.NewMemoryCache(capacity)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

// TestSQLiteCache creates a SQLite-backed local cache in a temp
// directory and registers cleanup.
func TestSQLiteCache(t *testing.T, capacity int64) *localcache.SQLiteCache {
	t.Helper()

	path := t.TempDir() + "/cache.db"
	cache, err := localcache.OpenSQLite(path, capacity)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}
