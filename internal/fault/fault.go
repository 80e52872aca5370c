// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fault defines the error taxonomy shared by the sync engine,
// the local cache and the remote client. Errors are matched with
// errors.Is against the sentinel kinds below; the wrapped message
// carries the human-readable reason.
package fault

import (
	"errors"
	"fmt"
)

// Kind is a sentinel error category.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

const (
	// ErrValidation marks a missing or invalid required field. The
	// operation is rejected before any mutation.
	ErrValidation Kind = "validation error"

	// ErrAuthorization marks a failed role or ownership check.
	ErrAuthorization Kind = "authorization error"

	// ErrNotFound marks an id lookup miss on update or delete.
	ErrNotFound Kind = "not found"

	// ErrTransport marks an unreachable remote or a non-success
	// status. Never propagated past the engine; triggers local-only
	// fallback.
	ErrTransport Kind = "transport error"

	// ErrQuota marks a local cache write that exceeds capacity after
	// the prune-and-retry path has already run.
	ErrQuota Kind = "quota exceeded"
)

// Validation returns a validation error with a formatted reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Authorization returns an authorization error with a formatted reason.
func Authorization(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

// NotFound returns a not-found error with a formatted reason.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// IsKind reports whether err belongs to the given category.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, kind)
}
