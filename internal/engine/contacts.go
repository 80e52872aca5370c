// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/metalmaster-go/internal/fault"
	"github.com/olegiv/metalmaster-go/internal/model"
)

// SubmitContact appends a new order request. Anyone may submit; all
// three fields are required. The contact gets a stable id at creation
// so that status updates survive pruning.
func (e *Engine) SubmitContact(ctx context.Context, name, phone, message string) (model.Contact, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	message = strings.TrimSpace(message)
	if name == "" || phone == "" || message == "" {
		return model.Contact{}, fault.Validation("name, phone and message are required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	contact := model.Contact{
		ID:      uuid.NewString(),
		Name:    name,
		Phone:   phone,
		Message: message,
		Date:    time.Now().UTC(),
		Status:  model.StatusNew,
	}

	e.data.Contacts = append(e.data.Contacts, contact)
	if err := e.persistContacts(ctx); err != nil {
		return model.Contact{}, err
	}
	e.pushRemote()

	return contact, nil
}

// UpdateOrderStatus transitions a contact's status by its stable id.
func (e *Engine) UpdateOrderStatus(ctx context.Context, id, status string) (model.Contact, error) {
	if !model.IsValidStatus(status) {
		return model.Contact{}, fault.Validation("unknown status %q", status)
	}
	if !e.isAdmin() {
		return model.Contact{}, fault.Authorization("only administrators can manage orders")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.data.Contacts {
		if e.data.Contacts[i].ID == id {
			return e.setContactStatusLocked(ctx, i, status)
		}
	}
	return model.Contact{}, fault.NotFound("contact %s", id)
}

// UpdateOrderStatusAt transitions a contact's status by position in
// the ordered sequence. Kept for compatibility with records created
// before contacts carried ids; the index is unstable once pruning
// truncates the list, so prefer UpdateOrderStatus.
func (e *Engine) UpdateOrderStatusAt(ctx context.Context, index int, status string) (model.Contact, error) {
	if !model.IsValidStatus(status) {
		return model.Contact{}, fault.Validation("unknown status %q", status)
	}
	if !e.isAdmin() {
		return model.Contact{}, fault.Authorization("only administrators can manage orders")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.data.Contacts) {
		return model.Contact{}, fault.NotFound("contact at index %d", index)
	}
	return e.setContactStatusLocked(ctx, index, status)
}

func (e *Engine) setContactStatusLocked(ctx context.Context, index int, status string) (model.Contact, error) {
	e.data.Contacts[index].Status = status
	// Persisting may truncate the collection, invalidating index.
	updated := e.data.Contacts[index]
	if err := e.persistContacts(ctx); err != nil {
		return model.Contact{}, err
	}
	e.pushRemote()
	return updated, nil
}

// Contacts returns a copy of the contacts collection.
func (e *Engine) Contacts() []model.Contact {
	e.mu.Lock()
	defer e.mu.Unlock()

	contacts := make([]model.Contact, len(e.data.Contacts))
	copy(contacts, e.data.Contacts)
	return contacts
}
