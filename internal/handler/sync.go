// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/metalmaster-go/internal/model"
)

// GetData returns the full aggregate as one document.
func (h *Handler) GetData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Data())
}

// SyncAll accepts a client's full aggregate. Every provided collection
// replaces the corresponding server-side collection wholesale; settings
// alone is field-merged. Absent collections are left untouched.
func (h *Handler) SyncAll(w http.ResponseWriter, r *http.Request) {
	var req model.SyncRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.store.Update(func(data *model.Data) error {
		if req.Products != nil {
			data.Products = req.Products
		}
		if req.Users != nil {
			data.Users = req.Users
		}
		if req.Contacts != nil {
			data.Contacts = req.Contacts
		}
		if req.Settings != nil {
			data.Settings = data.Settings.Merge(*req.Settings)
		}
		return nil
	})
	if err != nil {
		h.log.Error("syncing data", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to sync data")
		return
	}

	writeSuccess(w, "Данные синхронизированы")
}
