// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Contact statuses
const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// ValidStatuses contains all valid contact statuses.
var ValidStatuses = []string{StatusNew, StatusProcessing, StatusCompleted}

// IsValidStatus checks if a status value is one of the known statuses.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Contact represents a customer order request submitted through the
// contact form. Contacts are append-only apart from status transitions.
//
// Historically contacts carried no identifier and were addressed by
// position in the sequence, which silently retargets a different record
// once pruning truncates the list. New contacts are assigned a UUID at
// creation; ID stays optional on the wire so old records still load.
type Contact struct {
	ID      string    `json:"id,omitempty"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Status  string    `json:"status"`
}
