// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered storefront user.
//
// The password is stored and compared in plaintext. This preserves the
// storage and lookup contract of the legacy data files; it is not a
// security guarantee, and a production deployment must hash credentials.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"password"`
	Phone          string    `json:"phone"`
	Role           string    `json:"role"`
	DateRegistered time.Time `json:"dateRegistered"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserPatch describes a partial user update. Nil fields are left
// unchanged by the merge.
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// Apply merges the patch into the user, field by field.
func (up UserPatch) Apply(u *User) {
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.Password != nil {
		u.Password = *up.Password
	}
	if up.Phone != nil {
		u.Phone = *up.Phone
	}
	if up.Role != nil {
		u.Role = *up.Role
	}
}
