// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package engine owns the in-memory storefront state and reconciles it
// between the remote sync service and the durable local cache.
//
// The model is local-first and eventually consistent: every mutation
// applies to the in-memory collections synchronously, is written to the
// local cache, and is then pushed to the remote store on a spawned
// goroutine whose failure is logged and never surfaced, retried or
// rolled back. The last successful sync wins wholesale.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/metalmaster-go/internal/fault"
	"github.com/olegiv/metalmaster-go/internal/imaging"
	"github.com/olegiv/metalmaster-go/internal/localcache"
	"github.com/olegiv/metalmaster-go/internal/model"
	"github.com/olegiv/metalmaster-go/internal/quota"
	"github.com/olegiv/metalmaster-go/internal/remote"
)

// DefaultRootEmail is the designated root identity: the one user with
// exclusive rights to delete or demote other users.
const DefaultRootEmail = "father@metall.ru"

// Config assembles the engine dependencies.
type Config struct {
	Cache     localcache.Cache
	Client    *remote.Client // nil disables remote sync entirely
	Processor *imaging.Processor
	Logger    *slog.Logger

	// RootEmail overrides DefaultRootEmail when non-empty.
	RootEmail string

	// Offline skips the remote fetch on Initialize and all pushes.
	Offline bool

	// QuotaThreshold overrides quota.DefaultThreshold when positive.
	QuotaThreshold int64
}

// Engine holds the in-memory aggregate and coordinates persistence.
// All exported methods are safe for concurrent use; the in-memory
// collections are only ever touched under the mutex.
type Engine struct {
	mu          sync.Mutex
	data        model.Data
	currentUser *model.User
	theme       string
	lastID      int64

	cache     localcache.Cache
	guard     *quota.Guard
	client    *remote.Client
	processor *imaging.Processor
	log       *slog.Logger
	rootEmail string
	offline   bool

	pushes sync.WaitGroup
}

// New creates an Engine. Initialize must be called before use.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	rootEmail := cfg.RootEmail
	if rootEmail == "" {
		rootEmail = DefaultRootEmail
	}
	processor := cfg.Processor
	if processor == nil {
		processor = imaging.NewProcessor(imaging.DefaultOptions(), log)
	}
	return &Engine{
		data:      model.DefaultData(),
		theme:     ThemeDark,
		cache:     cfg.Cache,
		guard:     quota.NewGuard(cfg.Cache, cfg.QuotaThreshold, log),
		client:    cfg.Client,
		processor: processor,
		log:       log,
		rootEmail: rootEmail,
		offline:   cfg.Offline,
	}
}

// Initialize loads the aggregate, preferring the remote store. Any
// remote failure falls back to the local cache; missing or unparsable
// cache keys default to empty collections and default settings. The
// current user and theme are always restored from the local cache, the
// remote store has no session concept.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	loaded := false
	if !e.offline && e.client != nil {
		data, err := e.client.GetAll(ctx)
		if err != nil {
			e.log.Warn("remote fetch failed, falling back to local cache", "err", err)
		} else {
			e.data = normalize(data)
			loaded = true
			e.log.Info("state loaded from remote store",
				"products", len(e.data.Products), "users", len(e.data.Users))
		}
	}

	if !loaded {
		if err := e.loadFromCache(ctx); err != nil {
			return fmt.Errorf("loading local cache: %w", err)
		}
		e.log.Info("state loaded from local cache",
			"products", len(e.data.Products), "users", len(e.data.Users))
	}

	var current model.User
	if ok, err := e.readCacheJSON(ctx, localcache.KeyCurrentUser, &current); err != nil {
		return err
	} else if ok {
		e.currentUser = &current
	}

	theme, err := e.cache.Get(ctx, localcache.KeyTheme)
	if err == nil && (theme == ThemeDark || theme == ThemeLight) {
		e.theme = theme
	} else if err != nil && !errors.Is(err, localcache.ErrCacheMiss) {
		return err
	}

	return nil
}

func (e *Engine) loadFromCache(ctx context.Context) error {
	e.data = model.DefaultData()

	var products []model.Product
	if ok, err := e.readCacheJSON(ctx, localcache.KeyProducts, &products); err != nil {
		return err
	} else if ok {
		e.data.Products = products
	}

	var users []model.User
	if ok, err := e.readCacheJSON(ctx, localcache.KeyUsers, &users); err != nil {
		return err
	} else if ok {
		e.data.Users = users
	}

	var contacts []model.Contact
	if ok, err := e.readCacheJSON(ctx, localcache.KeyContacts, &contacts); err != nil {
		return err
	} else if ok {
		e.data.Contacts = contacts
	}

	var settings model.Settings
	if ok, err := e.readCacheJSON(ctx, localcache.KeySettings, &settings); err != nil {
		return err
	} else if ok {
		e.data.Settings = model.DefaultSettings().Merge(settings)
	}

	return nil
}

// readCacheJSON reads and decodes one cache key. Absent and unparsable
// entries both report ok=false so callers keep their defaults.
func (e *Engine) readCacheJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := e.cache.Get(ctx, key)
	if errors.Is(err, localcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		e.log.Warn("discarding unparsable cache entry", "key", key, "err", err)
		return false, nil
	}
	return true, nil
}

func (e *Engine) writeCacheJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := e.cache.Set(ctx, key, string(raw)); err != nil {
		if errors.Is(err, localcache.ErrQuotaExceeded) {
			return fmt.Errorf("%w: writing %s", fault.ErrQuota, key)
		}
		return err
	}
	return nil
}

// persistProducts runs the quota guard and writes the products
// collection, reflecting any truncation back into memory. Callers must
// hold the mutex.
func (e *Engine) persistProducts(ctx context.Context) error {
	if err := e.pruneLocked(ctx); err != nil {
		return err
	}

	kept, err := e.guard.WriteProducts(ctx, e.data.Products)
	e.data.Products = kept
	return err
}

// persistContacts runs the quota guard and writes the contacts
// collection. Callers must hold the mutex.
func (e *Engine) persistContacts(ctx context.Context) error {
	if err := e.pruneLocked(ctx); err != nil {
		return err
	}
	return e.writeCacheJSON(ctx, localcache.KeyContacts, e.data.Contacts)
}

// pruneLocked runs the quota guard over the in-memory collections. The
// guard receives and returns the collections themselves, so a record
// appended by the mutation in flight is part of what gets truncated
// and written, never lost to a stale cache copy. Indexes into the
// collections held from before this call are invalid once it returns.
// Callers must hold the mutex.
func (e *Engine) pruneLocked(ctx context.Context) error {
	contacts, products, _, err := e.guard.CheckAndPrune(ctx, e.data.Contacts, e.data.Products)
	if err != nil {
		return err
	}
	e.data.Contacts = contacts
	e.data.Products = products
	return nil
}

// pushRemote snapshots the aggregate and pushes it to the remote store
// on its own goroutine. Failures are logged, never retried and never
// surfaced: the local mutation has already succeeded. Callers must hold
// the mutex.
func (e *Engine) pushRemote() {
	if e.offline || e.client == nil {
		return
	}

	snapshot := e.snapshotLocked()
	e.pushes.Add(1)
	go func() {
		defer e.pushes.Done()
		req := model.SyncRequest{
			Products: snapshot.Products,
			Users:    snapshot.Users,
			Contacts: snapshot.Contacts,
			Settings: &snapshot.Settings,
		}
		if err := e.client.SyncAll(context.Background(), req); err != nil {
			e.log.Warn("remote sync failed, local state stays authoritative", "err", err)
		}
	}()
}

// SyncNow pushes the full aggregate to the remote store synchronously.
// Used by explicit sync commands and periodic schedules; regular
// mutations use the fire-and-forget path instead.
func (e *Engine) SyncNow(ctx context.Context) error {
	if e.offline || e.client == nil {
		return nil
	}

	snapshot := e.Snapshot()
	return e.client.SyncAll(ctx, model.SyncRequest{
		Products: snapshot.Products,
		Users:    snapshot.Users,
		Contacts: snapshot.Contacts,
		Settings: &snapshot.Settings,
	})
}

// WaitSync blocks until all in-flight remote pushes have finished.
// Intended for graceful shutdown and tests; normal operation never
// awaits a push.
func (e *Engine) WaitSync() {
	e.pushes.Wait()
}

// Snapshot returns a deep copy of the current aggregate.
func (e *Engine) Snapshot() model.Data {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() model.Data {
	snapshot := model.Data{
		Products: make([]model.Product, len(e.data.Products)),
		Users:    make([]model.User, len(e.data.Users)),
		Contacts: make([]model.Contact, len(e.data.Contacts)),
		Settings: e.data.Settings,
	}
	for i, p := range e.data.Products {
		snapshot.Products[i] = p.Clone()
	}
	copy(snapshot.Users, e.data.Users)
	copy(snapshot.Contacts, e.data.Contacts)
	return snapshot
}

// nextID returns a process-wide monotonically nondecreasing id derived
// from the current time, bumped by one whenever two calls land on the
// same millisecond tick.
func (e *Engine) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	e.lastID = id
	return id
}

func normalize(data model.Data) model.Data {
	if data.Products == nil {
		data.Products = []model.Product{}
	}
	if data.Users == nil {
		data.Users = []model.User{}
	}
	if data.Contacts == nil {
		data.Contacts = []model.Contact{}
	}
	if (data.Settings == model.Settings{}) {
		data.Settings = model.DefaultSettings()
	}
	return data
}
