// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package quota watches the durable local cache footprint and prunes
// the oldest contacts and products once it crosses the threshold.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/metalmaster-go/internal/fault"
	"github.com/olegiv/metalmaster-go/internal/localcache"
	"github.com/olegiv/metalmaster-go/internal/model"
)

const (
	// DefaultThreshold is the total character count above which pruning
	// kicks in, matching the usual browser localStorage limit.
	DefaultThreshold = 4 * 1024 * 1024

	// MaxContacts is how many most-recent contacts survive a prune.
	MaxContacts = 50

	// MaxProducts is how many most-recent products survive a prune.
	MaxProducts = 100

	// HardKeepProducts is how many products survive the recovery path
	// after a write itself fails with a quota error.
	HardKeepProducts = 50
)

// Guard measures the cache footprint and prunes oldest entries. Pruning
// is unconditional once the threshold is crossed: it does not target
// the entity currently being written, only aggregate size.
type Guard struct {
	cache     localcache.Cache
	threshold int64
	log       *slog.Logger
}

// NewGuard creates a Guard over the given cache. threshold <= 0 selects
// DefaultThreshold.
func NewGuard(cache localcache.Cache, threshold int64, log *slog.Logger) *Guard {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Guard{cache: cache, threshold: threshold, log: log}
}

// CheckAndPrune truncates the given collections to the most recent
// MaxContacts contacts and MaxProducts products when the total cache
// footprint exceeds the threshold, writing each truncated collection
// back to the cache. Collections are oldest-first, so truncation keeps
// the tail. The returned slices are authoritative: they come from the
// caller's in-memory state, not a cache reload, so a record appended
// by an in-flight mutation survives the prune.
func (g *Guard) CheckAndPrune(ctx context.Context, contacts []model.Contact, products []model.Product) ([]model.Contact, []model.Product, bool, error) {
	total, err := g.cache.TotalSize(ctx)
	if err != nil {
		return contacts, products, false, err
	}
	if total <= g.threshold {
		return contacts, products, false, nil
	}

	g.log.Warn("local cache over quota threshold, pruning oldest entries",
		"total", total, "threshold", g.threshold)

	pruned := false

	if len(contacts) > MaxContacts {
		contacts = contacts[len(contacts)-MaxContacts:]
		if err := writeJSON(ctx, g.cache, localcache.KeyContacts, contacts); err != nil {
			return contacts, products, pruned, err
		}
		pruned = true
	}

	if len(products) > MaxProducts {
		products = products[len(products)-MaxProducts:]
		if err := writeJSON(ctx, g.cache, localcache.KeyProducts, products); err != nil {
			return contacts, products, pruned, err
		}
		pruned = true
	}

	return contacts, products, pruned, nil
}

// WriteProducts persists the products collection. If the write itself
// fails with a quota error, it keeps only the last HardKeepProducts
// entries and retries once; a second failure is reported as a quota
// fault. The returned slice is what actually got persisted.
func (g *Guard) WriteProducts(ctx context.Context, products []model.Product) ([]model.Product, error) {
	err := writeJSON(ctx, g.cache, localcache.KeyProducts, products)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, localcache.ErrQuotaExceeded) {
		return products, err
	}

	g.log.Warn("cache write over quota, keeping only most recent products",
		"keep", HardKeepProducts, "had", len(products))

	if len(products) > HardKeepProducts {
		products = products[len(products)-HardKeepProducts:]
	}
	if err := writeJSON(ctx, g.cache, localcache.KeyProducts, products); err != nil {
		return products, fmt.Errorf("%w: %v", fault.ErrQuota, err)
	}
	return products, nil
}

func writeJSON(ctx context.Context, cache localcache.Cache, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return cache.Set(ctx, key, string(raw))
}
