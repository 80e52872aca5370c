// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestCategoryName(t *testing.T) {
	if got := CategoryName(CategoryDoors); got != "Двери" {
		t.Errorf("expected Двери, got %q", got)
	}
	if got := CategoryName("gates"); got != "gates" {
		t.Errorf("expected unknown category to pass through, got %q", got)
	}
}

func TestProductClone_IndependentImages(t *testing.T) {
	p := Product{
		ID:     1,
		Name:   "Дверь",
		Images: []string{"a", "b"},
	}

	cp := p.Clone()
	cp.Images[0] = "mutated"

	if p.Images[0] != "a" {
		t.Errorf("clone mutation leaked into original: %q", p.Images[0])
	}
}

func TestProductPatch_Apply(t *testing.T) {
	added := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p := Product{
		ID:          42,
		Name:        "Забор",
		Category:    CategoryFences,
		Price:       10000,
		Description: "Металлический забор",
		DateAdded:   added,
	}

	name := "Забор секционный"
	price := int64(12500)
	patch := ProductPatch{Name: &name, Price: &price}
	patch.Apply(&p)

	if p.Name != name {
		t.Errorf("expected name %q, got %q", name, p.Name)
	}
	if p.Price != price {
		t.Errorf("expected price %d, got %d", price, p.Price)
	}
	// Untouched fields survive the merge.
	if p.Category != CategoryFences {
		t.Errorf("category changed: %q", p.Category)
	}
	if p.Description != "Металлический забор" {
		t.Errorf("description changed: %q", p.Description)
	}
	if !p.DateAdded.Equal(added) {
		t.Errorf("dateAdded changed: %v", p.DateAdded)
	}
}

func TestProductPatch_ApplyEmpty(t *testing.T) {
	p := Product{ID: 1, Name: "Ворота", Price: 5000}

	ProductPatch{}.Apply(&p)

	if p.ID != 1 || p.Name != "Ворота" || p.Price != 5000 {
		t.Errorf("empty patch changed the product: %+v", p)
	}
}
