// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/metalmaster-go/internal/testutil"
)

func TestOptions_Defaults(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, DefaultMaxWidth, opts.MaxWidth)
	assert.Equal(t, DefaultMaxHeight, opts.MaxHeight)
	assert.Equal(t, DefaultQuality, opts.Quality)
}

func TestNewProcessor_PartialOptions(t *testing.T) {
	// Only the quality is pinned; the bounds fall back.
	p := NewProcessor(Options{Quality: 90}, testutil.TestLoggerSilent())

	assert.Equal(t, DefaultMaxWidth, p.opts.MaxWidth)
	assert.Equal(t, DefaultMaxHeight, p.opts.MaxHeight)
	assert.Equal(t, 90, p.opts.Quality)
}

func TestBatchResult_Accounting(t *testing.T) {
	p := NewProcessor(DefaultOptions(), testutil.TestLoggerSilent())

	result := p.EncodeBatch(context.Background(), []File{
		{Name: "door.png", Reader: bytes.NewReader(pngImage(t, 100, 80))},
		{Name: "notes.txt", Reader: strings.NewReader("not an image")},
		{Name: "gate.png", Reader: bytes.NewReader(pngImage(t, 60, 40))},
	})

	require.Len(t, result.Images, 2)
	assert.Equal(t, 1, result.Skipped)
	for _, img := range result.Images {
		assert.True(t, strings.HasPrefix(img, "data:image/jpeg;base64,"))
	}
}
