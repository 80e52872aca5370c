// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment
// variables for both the sync service and the client tooling.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment
// variables.
type Config struct {
	// Server
	ServerHost string `env:"MM_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MM_SERVER_PORT" envDefault:"3000"`
	DataFile   string `env:"MM_DATA_FILE" envDefault:"./data.json"`

	// Rate limiting for public write endpoints
	RateLimitRPS   float64 `env:"MM_RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst int     `env:"MM_RATE_LIMIT_BURST" envDefault:"10"`

	// Client
	APIBaseURL   string `env:"MM_API_BASE_URL" envDefault:"http://localhost:3000/api"`
	CachePath    string `env:"MM_CACHE_PATH" envDefault:"./metalmaster-cache.db"`
	Offline      bool   `env:"MM_OFFLINE" envDefault:"false"`
	RootEmail    string `env:"MM_ROOT_EMAIL" envDefault:"father@metall.ru"`
	SyncSchedule string `env:"MM_SYNC_SCHEDULE"` // cron spec, empty disables periodic sync

	// Local cache sizing (character counts)
	CacheCapacity  int64 `env:"MM_CACHE_CAPACITY" envDefault:"5242880"`  // 5 MiB, the usual localStorage limit
	QuotaThreshold int64 `env:"MM_QUOTA_THRESHOLD" envDefault:"4194304"` // 4 MiB, prune above this

	LogLevel string `env:"MM_LOG_LEVEL" envDefault:"info"`
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SlogLevel maps the configured log level onto a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.QuotaThreshold > cfg.CacheCapacity && cfg.CacheCapacity > 0 {
		return nil, fmt.Errorf("MM_QUOTA_THRESHOLD (%d) must not exceed MM_CACHE_CAPACITY (%d)",
			cfg.QuotaThreshold, cfg.CacheCapacity)
	}
	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("MM_RATE_LIMIT_RPS must be positive, got %v", cfg.RateLimitRPS)
	}

	return cfg, nil
}
