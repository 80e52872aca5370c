// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the REST handlers for the storefront sync
// service: per-entity CRUD, the bulk data endpoint and the sync
// endpoint consumed by local-first clients.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/metalmaster-go/internal/store"
)

// errNotFound aborts a store update callback without saving the
// document.
var errNotFound = errors.New("not found")

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store    *store.Store
	log      *slog.Logger
	sanitize *bluemonday.Policy
	limit    func(http.Handler) http.Handler

	idMu   sync.Mutex
	lastID int64
}

// New creates a Handler over the given document store.
func New(st *store.Store, log *slog.Logger) *Handler {
	return &Handler{
		store:    st,
		log:      log,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// SetRateLimiter installs a middleware applied to the public write
// endpoints (contact form, registration).
func (h *Handler) SetRateLimiter(mw func(http.Handler) http.Handler) {
	h.limit = mw
}

// Routes mounts all API routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/data", h.GetData)

	r.Get("/products", h.ListProducts)
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{id}", h.UpdateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)

	r.Get("/users", h.ListUsers)
	r.Put("/users/{id}", h.UpdateUser)
	r.Delete("/users/{id}", h.DeleteUser)

	r.Get("/contacts", h.ListContacts)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	r.Post("/sync", h.SyncAll)

	// The anonymous write endpoints carry the rate limit.
	r.Group(func(r chi.Router) {
		if h.limit != nil {
			r.Use(h.limit)
		}
		r.Post("/users", h.CreateUser)
		r.Post("/contacts", h.CreateContact)
	})
}

// nextID returns a monotonically nondecreasing id derived from the
// current time, matching how the legacy service assigned ids.
func (h *Handler) nextID() int64 {
	h.idMu.Lock()
	defer h.idMu.Unlock()

	id := time.Now().UnixMilli()
	if id <= h.lastID {
		id = h.lastID + 1
	}
	h.lastID = id
	return id
}
