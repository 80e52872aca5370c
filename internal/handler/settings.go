// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/metalmaster-go/internal/model"
)

// GetSettings returns the settings singleton.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Data().Settings)
}

// UpdateSettings field-merges the submission into the stored settings
// and returns the merged record.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var incoming model.Settings
	if err := decodeBody(r, &incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var merged model.Settings
	err := h.store.Update(func(data *model.Data) error {
		data.Settings = data.Settings.Merge(incoming)
		merged = data.Settings
		return nil
	})
	if err != nil {
		h.log.Error("saving settings", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, merged)
}
