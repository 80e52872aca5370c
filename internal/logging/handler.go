// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that mirrors WARN and
// ERROR records into a bounded in-memory ring. Background sync failures
// are deliberately never surfaced to callers, so the ring is the one
// place where they stay visible for diagnostics.
package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRingSize is how many records the ring keeps by default.
const DefaultRingSize = 256

// Record is one captured log entry.
type Record struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// RingHandler is a slog.Handler that wraps another handler and also
// keeps the most recent WARN+ records in memory.
type RingHandler struct {
	inner slog.Handler
	level slog.Level

	mu      sync.Mutex
	records []Record
	next    int
	full    bool
}

// NewRingHandler creates a RingHandler that wraps inner and captures
// records at WARN level and above. size <= 0 selects DefaultRingSize.
func NewRingHandler(inner slog.Handler, size int) *RingHandler {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingHandler{
		inner:   inner,
		level:   slog.LevelWarn,
		records: make([]Record, size),
	}
}

// Enabled implements slog.Handler.
func (h *RingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RingHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level < h.level {
		return nil
	}

	attrs := make(map[string]string)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})

	h.mu.Lock()
	h.records[h.next] = Record{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	}
	h.next++
	if h.next == len(h.records) {
		h.next = 0
		h.full = true
	}
	h.mu.Unlock()

	return nil
}

// WithAttrs implements slog.Handler. Captured records share the ring.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ringChild{RingHandler: h, inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler. Captured records share the ring.
func (h *RingHandler) WithGroup(name string) slog.Handler {
	return &ringChild{RingHandler: h, inner: h.inner.WithGroup(name)}
}

// Recent returns the captured records, oldest first.
func (h *RingHandler) Recent() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		out := make([]Record, h.next)
		copy(out, h.records[:h.next])
		return out
	}

	out := make([]Record, 0, len(h.records))
	out = append(out, h.records[h.next:]...)
	out = append(out, h.records[:h.next]...)
	return out
}

// ringChild keeps derived handlers (WithAttrs/WithGroup) writing into
// the parent's ring while forwarding to their own inner handler.
type ringChild struct {
	*RingHandler
	inner slog.Handler
}

func (c *ringChild) Enabled(ctx context.Context, level slog.Level) bool {
	return c.inner.Enabled(ctx, level)
}

func (c *ringChild) Handle(ctx context.Context, r slog.Record) error {
	if err := c.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level < c.level {
		return nil
	}

	attrs := make(map[string]string)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})

	c.mu.Lock()
	c.records[c.next] = Record{Time: r.Time, Level: r.Level, Message: r.Message, Attrs: attrs}
	c.next++
	if c.next == len(c.records) {
		c.next = 0
		c.full = true
	}
	c.mu.Unlock()
	return nil
}

func (c *ringChild) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ringChild{RingHandler: c.RingHandler, inner: c.inner.WithAttrs(attrs)}
}

func (c *ringChild) WithGroup(name string) slog.Handler {
	return &ringChild{RingHandler: c.RingHandler, inner: c.inner.WithGroup(name)}
}
