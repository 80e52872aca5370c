// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Data is the full aggregate exchanged over /api/data and /api/sync and
// persisted by the server as a single JSON document.
type Data struct {
	Products []Product `json:"products"`
	Users    []User    `json:"users"`
	Contacts []Contact `json:"contacts"`
	Settings Settings  `json:"settings"`
}

// DefaultData returns an aggregate with empty collections and default
// settings, used when no data file exists yet.
func DefaultData() Data {
	return Data{
		Products: []Product{},
		Users:    []User{},
		Contacts: []Contact{},
		Settings: DefaultSettings(),
	}
}

// SyncRequest is the body of POST /api/sync. Each collection is
// optional; a provided collection fully replaces the server-side copy,
// settings alone is field-merged.
type SyncRequest struct {
	Products []Product `json:"products,omitempty"`
	Users    []User    `json:"users,omitempty"`
	Contacts []Contact `json:"contacts,omitempty"`
	Settings *Settings `json:"settings,omitempty"`
}
