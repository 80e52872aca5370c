// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/olegiv/metalmaster-go/internal/model"
)

// ListContacts returns the full contacts collection.
func (h *Handler) ListContacts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Data().Contacts)
}

// CreateContact appends a new contact, stamping the date server-side
// and defaulting the status to new.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var contact model.Contact
	if err := decodeBody(r, &contact); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact.Date = time.Now().UTC()
	if contact.Status == "" {
		contact.Status = model.StatusNew
	}
	contact.Name = h.sanitize.Sanitize(contact.Name)
	contact.Message = h.sanitize.Sanitize(contact.Message)

	err := h.store.Update(func(data *model.Data) error {
		data.Contacts = append(data.Contacts, contact)
		return nil
	})
	if err != nil {
		h.log.Error("saving contact", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save contact")
		return
	}

	writeJSON(w, http.StatusOK, contact)
}
