// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/metalmaster-go/internal/model"
)

// ListUsers returns the full users collection.
func (h *Handler) ListUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Data().Users)
}

// CreateUser stores a new user, assigning its id and dateRegistered
// server-side.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := decodeBody(r, &user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user.ID = h.nextID()
	user.DateRegistered = time.Now().UTC()
	user.Name = h.sanitize.Sanitize(user.Name)

	err := h.store.Update(func(data *model.Data) error {
		data.Users = append(data.Users, user)
		return nil
	})
	if err != nil {
		h.log.Error("saving user", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser merges partial fields into the user with the given id.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var patch model.UserPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Name != nil {
		clean := h.sanitize.Sanitize(*patch.Name)
		patch.Name = &clean
	}

	var updated model.User
	found := false
	err = h.store.Update(func(data *model.Data) error {
		for i := range data.Users {
			if data.Users[i].ID == id {
				patch.Apply(&data.Users[i])
				updated = data.Users[i]
				found = true
				return nil
			}
		}
		return errNotFound
	})
	if err != nil && !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.log.Error("updating user", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteUser removes the user with the given id.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	found := false
	err = h.store.Update(func(data *model.Data) error {
		for i := range data.Users {
			if data.Users[i].ID == id {
				data.Users = append(data.Users[:i], data.Users[i+1:]...)
				found = true
				return nil
			}
		}
		return errNotFound
	})
	if err != nil && !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.log.Error("deleting user", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	writeSuccess(w, "")
}
