// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging turns uploaded product photos into compact encoded
// thumbnail strings that can be embedded in the catalog data.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// Default thumbnail bounds and JPEG quality.
const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
	DefaultQuality   = 70
)

// ErrNotImage is returned by EncodeThumbnail for non-image input.
// In batch mode such files are skipped and counted instead.
var ErrNotImage = fmt.Errorf("not an image")

// Options configures thumbnail encoding.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // JPEG quality 1-100
}

// DefaultOptions returns the standard catalog thumbnail settings.
func DefaultOptions() Options {
	return Options{
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		Quality:   DefaultQuality,
	}
}

// Processor encodes product images.
type Processor struct {
	opts Options
	log  *slog.Logger
}

// NewProcessor creates a Processor. Zero option fields fall back to
// the defaults.
func NewProcessor(opts Options, log *slog.Logger) *Processor {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	return &Processor{opts: opts, log: log}
}

// EncodeThumbnail reads a single image, scales it down to fit the
// configured bounds and returns it as a base64 JPEG data URL. Returns
// ErrNotImage when the payload does not sniff as an image.
func (p *Processor) EncodeThumbnail(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading image data: %w", err)
	}

	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotImage
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	// Fit preserves aspect ratio and never upscales.
	img = imaging.Fit(img, p.opts.MaxWidth, p.opts.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.opts.Quality)); err != nil {
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// File is one unit of a multi-file submission.
type File struct {
	Name   string
	Reader io.Reader
}

// BatchResult is the joined outcome of a batch submission. Images holds
// the encoded thumbnails in input order; Skipped counts files that were
// not images or failed to decode.
type BatchResult struct {
	Images  []string
	Skipped int
}

// EncodeBatch encodes every file concurrently and joins on completion:
// the result is ready only once each file has either produced a
// thumbnail or been skipped, regardless of arrival order. A skipped
// file never blocks the submission.
func (p *Processor) EncodeBatch(ctx context.Context, files []File) BatchResult {
	if len(files) == 0 {
		return BatchResult{Images: []string{}}
	}

	encoded := make([]string, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			thumb, err := p.EncodeThumbnail(f.Reader)
			if err != nil {
				p.log.Warn("skipping file in image batch", "file", f.Name, "err", err)
				return
			}
			encoded[i] = thumb
		}(i, f)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Encodes are not cancellable once started; a cancelled
		// context just means the caller abandoned the submission.
		p.log.Warn("image batch finished after context cancellation", "err", err)
	}

	result := BatchResult{Images: make([]string, 0, len(files))}
	for _, thumb := range encoded {
		if thumb == "" {
			result.Skipped++
			continue
		}
		result.Images = append(result.Images, thumb)
	}
	return result
}
