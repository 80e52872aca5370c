// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"strings"
	"time"

	"github.com/olegiv/metalmaster-go/internal/fault"
	"github.com/olegiv/metalmaster-go/internal/imaging"
	"github.com/olegiv/metalmaster-go/internal/model"
)

// CreateProductInput is a product submission from the add-product form.
// Files carries the selected image files; non-image files are skipped
// and counted, they never block the submission.
type CreateProductInput struct {
	Name        string
	Category    string
	Price       int64
	Description string
	Files       []imaging.File
}

// CreateProduct validates and stores a new product. Admin only. The
// product is not persisted until every selected file has been encoded
// or skipped; the encode batch joins before the mutation applies.
func (e *Engine) CreateProduct(ctx context.Context, input CreateProductInput) (model.Product, error) {
	if !e.isAdmin() {
		return model.Product{}, fault.Authorization("only administrators can add products")
	}
	if err := validateProductFields(input.Name, input.Category, input.Price, input.Description); err != nil {
		return model.Product{}, err
	}

	// Fan-out/fan-in: all encodes complete before anything mutates.
	batch := e.processor.EncodeBatch(ctx, input.Files)
	if batch.Skipped > 0 {
		e.log.Info("skipped non-image files in product submission", "skipped", batch.Skipped)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	product := model.Product{
		ID:          e.nextID(),
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Price:       input.Price,
		Description: strings.TrimSpace(input.Description),
		Images:      batch.Images,
		DateAdded:   time.Now().UTC(),
	}

	e.data.Products = append(e.data.Products, product)
	if err := e.persistProducts(ctx); err != nil {
		return model.Product{}, err
	}
	e.pushRemote()

	return product.Clone(), nil
}

// UpdateProduct applies a field-level merge to the product with the
// given id. Admin only; a miss reports not found.
func (e *Engine) UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	if !e.isAdmin() {
		return model.Product{}, fault.Authorization("only administrators can edit products")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return model.Product{}, fault.Validation("product name cannot be empty")
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return model.Product{}, fault.Validation("product price must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.findProductLocked(id)
	if idx < 0 {
		return model.Product{}, fault.NotFound("product %d", id)
	}

	patch.Apply(&e.data.Products[idx])
	// Persisting may truncate the collection, invalidating idx.
	updated := e.data.Products[idx].Clone()
	if err := e.persistProducts(ctx); err != nil {
		return model.Product{}, err
	}
	e.pushRemote()

	return updated, nil
}

// AddProductImages encodes the given files and appends the resulting
// thumbnails to an existing product. Admin only.
func (e *Engine) AddProductImages(ctx context.Context, id int64, files []imaging.File) (model.Product, error) {
	if !e.isAdmin() {
		return model.Product{}, fault.Authorization("only administrators can edit products")
	}

	batch := e.processor.EncodeBatch(ctx, files)

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.findProductLocked(id)
	if idx < 0 {
		return model.Product{}, fault.NotFound("product %d", id)
	}

	e.data.Products[idx].Images = append(e.data.Products[idx].Images, batch.Images...)
	updated := e.data.Products[idx].Clone()
	if err := e.persistProducts(ctx); err != nil {
		return model.Product{}, err
	}
	e.pushRemote()

	return updated, nil
}

// RemoveProductImage drops one image from a product by position.
func (e *Engine) RemoveProductImage(ctx context.Context, id int64, imageIndex int) (model.Product, error) {
	if !e.isAdmin() {
		return model.Product{}, fault.Authorization("only administrators can edit products")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.findProductLocked(id)
	if idx < 0 {
		return model.Product{}, fault.NotFound("product %d", id)
	}
	images := e.data.Products[idx].Images
	if imageIndex < 0 || imageIndex >= len(images) {
		return model.Product{}, fault.NotFound("product %d image %d", id, imageIndex)
	}

	e.data.Products[idx].Images = append(images[:imageIndex], images[imageIndex+1:]...)
	updated := e.data.Products[idx].Clone()
	if err := e.persistProducts(ctx); err != nil {
		return model.Product{}, err
	}
	e.pushRemote()

	return updated, nil
}

// DeleteProduct removes a product by id. Admin only; a miss reports
// not found and leaves the collection unchanged.
func (e *Engine) DeleteProduct(ctx context.Context, id int64) error {
	if !e.isAdmin() {
		return fault.Authorization("only administrators can delete products")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.findProductLocked(id)
	if idx < 0 {
		return fault.NotFound("product %d", id)
	}

	e.data.Products = append(e.data.Products[:idx], e.data.Products[idx+1:]...)
	if err := e.persistProducts(ctx); err != nil {
		return err
	}
	e.pushRemote()

	return nil
}

// Products returns a deep copy of the products collection.
func (e *Engine) Products() []model.Product {
	e.mu.Lock()
	defer e.mu.Unlock()

	products := make([]model.Product, len(e.data.Products))
	for i, p := range e.data.Products {
		products[i] = p.Clone()
	}
	return products
}

// ProductsByCategory returns products in the given category; "all"
// (or empty) returns everything.
func (e *Engine) ProductsByCategory(category string) []model.Product {
	if category == "" || category == "all" {
		return e.Products()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var products []model.Product
	for _, p := range e.data.Products {
		if p.Category == category {
			products = append(products, p.Clone())
		}
	}
	return products
}

func (e *Engine) findProductLocked(id int64) int {
	for i := range e.data.Products {
		if e.data.Products[i].ID == id {
			return i
		}
	}
	return -1
}

func validateProductFields(name, category string, price int64, description string) error {
	if strings.TrimSpace(name) == "" {
		return fault.Validation("product name is required")
	}
	if category == "" {
		return fault.Validation("product category is required")
	}
	if price <= 0 {
		return fault.Validation("product price must be positive")
	}
	if strings.TrimSpace(description) == "" {
		return fault.Validation("product description is required")
	}
	return nil
}
