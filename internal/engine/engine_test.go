// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/olegiv/metalmaster-go/internal/localcache"
	"github.com/olegiv/metalmaster-go/internal/model"
	"github.com/olegiv/metalmaster-go/internal/remote"
	"github.com/olegiv/metalmaster-go/internal/testutil"
)

// newTestEngine builds an offline engine over a fresh in-memory cache.
func newTestEngine(t *testing.T) (*Engine, *localcache.MemoryCache) {
	t.Helper()

	cache := testutil.TestCache(t, 0)
	eng := New(Config{
		Cache:   cache,
		Logger:  testutil.TestLoggerSilent(),
		Offline: true,
	})
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return eng, cache
}

// loginRoot seeds the default accounts and logs in as the root
// administrator.
func loginRoot(t *testing.T, eng *Engine) model.User {
	t.Helper()

	ctx := context.Background()
	if _, err := eng.SeedDefaultUsers(ctx); err != nil {
		t.Fatalf("SeedDefaultUsers: %v", err)
	}
	u, err := eng.Login(ctx, DefaultRootEmail, "father123")
	if err != nil {
		t.Fatalf("Login as root: %v", err)
	}
	return u
}

func mustSetJSON(t *testing.T, cache localcache.Cache, key string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	if err := cache.Set(context.Background(), key, string(raw)); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

// newPressuredEngine builds an offline engine whose cache already holds
// the given collections and whose quota threshold of one byte forces a
// prune on the next products or contacts write.
func newPressuredEngine(t *testing.T, products []model.Product, contacts []model.Contact) *Engine {
	t.Helper()

	cache := testutil.TestCache(t, 0)
	if products != nil {
		mustSetJSON(t, cache, localcache.KeyProducts, products)
	}
	if contacts != nil {
		mustSetJSON(t, cache, localcache.KeyContacts, contacts)
	}
	eng := New(Config{
		Cache:          cache,
		Logger:         testutil.TestLoggerSilent(),
		Offline:        true,
		QuotaThreshold: 1,
	})
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return eng
}

func mustGetJSON(t *testing.T, cache localcache.Cache, key string, v any) {
	t.Helper()
	raw, err := cache.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		t.Fatalf("unmarshal %s: %v", key, err)
	}
}

func TestInitialize_RemotePreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Data{
			Products: []model.Product{{ID: 1, Name: "Дверь"}},
			Settings: model.DefaultSettings(),
		})
	}))
	defer srv.Close()

	cache := testutil.TestCache(t, 0)
	// Stale local copy that the remote fetch must shadow.
	mustSetJSON(t, cache, localcache.KeyProducts, []model.Product{{ID: 9, Name: "старый"}})

	eng := New(Config{
		Cache:  cache,
		Client: remote.New(srv.URL, nil),
		Logger: testutil.TestLoggerSilent(),
	})
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	products := eng.Products()
	if len(products) != 1 || products[0].Name != "Дверь" {
		t.Errorf("remote state not loaded: %+v", products)
	}
}

func TestInitialize_FallsBackToCacheOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // unreachable

	cache := testutil.TestCache(t, 0)
	mustSetJSON(t, cache, localcache.KeyProducts, []model.Product{{ID: 5, Name: "Забор"}})
	mustSetJSON(t, cache, localcache.KeyUsers, []model.User{{ID: 1, Email: "a@b.c"}})

	eng := New(Config{
		Cache:  cache,
		Client: remote.New(srv.URL, nil),
		Logger: testutil.TestLoggerSilent(),
	})
	// A dead server must not fail startup.
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if products := eng.Products(); len(products) != 1 || products[0].Name != "Забор" {
		t.Errorf("cache state not loaded: %+v", products)
	}
	if users := eng.Users(); len(users) != 1 {
		t.Errorf("cached users not loaded: %+v", users)
	}
}

func TestInitialize_UnparsableCacheEntryDefaults(t *testing.T) {
	cache := testutil.TestCache(t, 0)
	if err := cache.Set(context.Background(), localcache.KeyProducts, "{corrupt"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	eng := New(Config{Cache: cache, Logger: testutil.TestLoggerSilent(), Offline: true})
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("corrupt entry must not fail startup: %v", err)
	}
	if products := eng.Products(); len(products) != 0 {
		t.Errorf("expected empty products, got %+v", products)
	}
}

func TestInitialize_RestoresSessionAndTheme(t *testing.T) {
	ctx := context.Background()
	cache := testutil.TestCache(t, 0)

	user := model.User{ID: 1, Email: "user@example.com", Role: model.RoleUser}
	mustSetJSON(t, cache, localcache.KeyCurrentUser, user)
	if err := cache.Set(ctx, localcache.KeyTheme, ThemeLight); err != nil {
		t.Fatalf("Set theme: %v", err)
	}

	eng := New(Config{Cache: cache, Logger: testutil.TestLoggerSilent(), Offline: true})
	if err := eng.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	current, ok := eng.CurrentUser()
	if !ok || current.Email != "user@example.com" {
		t.Errorf("session not restored: %+v ok=%v", current, ok)
	}
	if eng.Theme() != ThemeLight {
		t.Errorf("theme not restored: %q", eng.Theme())
	}
}

func TestInitialize_IgnoresUnknownTheme(t *testing.T) {
	ctx := context.Background()
	cache := testutil.TestCache(t, 0)
	if err := cache.Set(ctx, localcache.KeyTheme, "sepia"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	eng := New(Config{Cache: cache, Logger: testutil.TestLoggerSilent(), Offline: true})
	if err := eng.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if eng.Theme() != ThemeDark {
		t.Errorf("unknown theme accepted: %q", eng.Theme())
	}
}

func TestInitialize_SettingsMergeOverDefaults(t *testing.T) {
	cache := testutil.TestCache(t, 0)
	mustSetJSON(t, cache, localcache.KeySettings, model.Settings{SiteName: "Мой Металл"})

	eng := New(Config{Cache: cache, Logger: testutil.TestLoggerSilent(), Offline: true})
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	s := eng.Settings()
	if s.SiteName != "Мой Металл" {
		t.Errorf("cached site name lost: %q", s.SiteName)
	}
	// Fields absent from the cached record fall back to the defaults.
	if s.ContactEmail != model.DefaultSettings().ContactEmail {
		t.Errorf("default not applied for missing field: %q", s.ContactEmail)
	}
}

func TestMutation_PushesToRemote(t *testing.T) {
	var mu sync.Mutex
	var synced model.SyncRequest
	syncs := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/data":
			_ = json.NewEncoder(w).Encode(model.DefaultData())
		case r.Method == http.MethodPost && r.URL.Path == "/sync":
			mu.Lock()
			_ = json.NewDecoder(r.Body).Decode(&synced)
			syncs++
			mu.Unlock()
			_ = json.NewEncoder(w).Encode(remote.SuccessResponse{Success: true})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	cache := testutil.TestCache(t, 0)
	eng := New(Config{
		Cache:  cache,
		Client: remote.New(srv.URL, nil),
		Logger: testutil.TestLoggerSilent(),
	})
	if err := eng.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if _, err := eng.SubmitContact(ctx, "Иван", "+7", "нужен забор"); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	eng.WaitSync()

	mu.Lock()
	defer mu.Unlock()
	if syncs != 1 {
		t.Fatalf("expected 1 sync, got %d", syncs)
	}
	if len(synced.Contacts) != 1 || synced.Contacts[0].Name != "Иван" {
		t.Errorf("sync payload missing the contact: %+v", synced.Contacts)
	}
}

func TestMutation_RemoteFailureNeverSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data" {
			_ = json.NewEncoder(w).Encode(model.DefaultData())
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx := context.Background()
	eng := New(Config{
		Cache:  testutil.TestCache(t, 0),
		Client: remote.New(srv.URL, nil),
		Logger: testutil.TestLoggerSilent(),
	})
	if err := eng.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// The push fails server-side; the local mutation must still
	// succeed and stay visible.
	if _, err := eng.SubmitContact(ctx, "Иван", "+7", "заявка"); err != nil {
		t.Fatalf("local mutation failed on remote error: %v", err)
	}
	eng.WaitSync()

	if contacts := eng.Contacts(); len(contacts) != 1 {
		t.Errorf("local state lost: %+v", contacts)
	}
}

func TestSyncNow_Offline(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.SyncNow(context.Background()); err != nil {
		t.Errorf("offline SyncNow must be a no-op, got %v", err)
	}
}

func TestNextID_Monotonic(t *testing.T) {
	eng, _ := newTestEngine(t)

	seen := make(map[int64]bool)
	var last int64
	for i := 0; i < 100; i++ {
		id := eng.nextID()
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		if id <= last {
			t.Fatalf("id %d not ahead of %d", id, last)
		}
		seen[id] = true
		last = id
	}
}

func TestTheme_SetAndToggle(t *testing.T) {
	ctx := context.Background()
	eng, cache := newTestEngine(t)

	if eng.Theme() != ThemeDark {
		t.Fatalf("default theme %q", eng.Theme())
	}

	next, err := eng.ToggleTheme(ctx)
	if err != nil {
		t.Fatalf("ToggleTheme: %v", err)
	}
	if next != ThemeLight || eng.Theme() != ThemeLight {
		t.Errorf("toggle did not switch to light: %q", eng.Theme())
	}

	if err := eng.SetTheme(ctx, "sepia"); err == nil {
		t.Error("unknown theme accepted")
	}

	// The preference is durable.
	stored, err := cache.Get(ctx, localcache.KeyTheme)
	if err != nil || stored != ThemeLight {
		t.Errorf("theme not persisted: %q %v", stored, err)
	}
}

func TestSeedDefaultUsers_Idempotent(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	added, err := eng.SeedDefaultUsers(ctx)
	if err != nil {
		t.Fatalf("SeedDefaultUsers: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 seeded users, got %d", added)
	}

	added, err = eng.SeedDefaultUsers(ctx)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if added != 0 {
		t.Errorf("second seed added %d users", added)
	}

	users := eng.Users()
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	var root *model.User
	for i := range users {
		if users[i].Email == DefaultRootEmail {
			root = &users[i]
		}
	}
	if root == nil {
		t.Fatal("root account missing")
	}
	if !root.IsAdmin() {
		t.Error("root account is not an admin")
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	loginRoot(t, eng)

	if _, err := eng.CreateProduct(ctx, CreateProductInput{
		Name: "Дверь", Category: model.CategoryDoors, Price: 1000, Description: "х",
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	snap := eng.Snapshot()
	snap.Products[0].Name = "mutated"

	if eng.Products()[0].Name == "mutated" {
		t.Error("snapshot mutation leaked into the engine")
	}
}
