// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Product, User, Contact and Settings structures.
package model

import "time"

// Product categories. The category field is an open string: unknown
// values are accepted and rendered as-is.
const (
	CategoryDoors  = "doors"
	CategoryFences = "fences"
	CategoryForged = "forged"
)

// CategoryNames maps known category codes to their display names.
var CategoryNames = map[string]string{
	CategoryDoors:  "Двери",
	CategoryFences: "Заборы",
	CategoryForged: "Ковка",
}

// CategoryName returns the display name for a category code, falling
// back to the raw code for unknown categories.
func CategoryName(code string) string {
	if name, ok := CategoryNames[code]; ok {
		return name
	}
	return code
}

// Product represents a catalog item.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	DateAdded   time.Time `json:"dateAdded"`
}

// Clone returns a deep copy of the product. Images is copied so that
// callers can mutate the result without touching shared state.
func (p Product) Clone() Product {
	cp := p
	if p.Images != nil {
		cp.Images = make([]string, len(p.Images))
		copy(cp.Images, p.Images)
	}
	return cp
}

// ProductPatch describes a partial product update. Nil fields are left
// unchanged by the merge.
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *int64   `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// Apply merges the patch into the product, field by field.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Images != nil {
		p.Images = pp.Images
	}
}
