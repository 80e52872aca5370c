// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/metalmaster-go/internal/model"
)

// ListProducts returns the full products collection.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Data().Products)
}

// CreateProduct stores a new product, assigning its id and dateAdded
// server-side.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := decodeBody(r, &product); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product.ID = h.nextID()
	product.DateAdded = time.Now().UTC()
	product.Name = h.sanitize.Sanitize(product.Name)
	product.Description = h.sanitize.Sanitize(product.Description)
	if product.Images == nil {
		product.Images = []string{}
	}

	err := h.store.Update(func(data *model.Data) error {
		data.Products = append(data.Products, product)
		return nil
	})
	if err != nil {
		h.log.Error("saving product", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct merges partial fields into the product with the given id.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var patch model.ProductPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Name != nil {
		clean := h.sanitize.Sanitize(*patch.Name)
		patch.Name = &clean
	}
	if patch.Description != nil {
		clean := h.sanitize.Sanitize(*patch.Description)
		patch.Description = &clean
	}

	var updated model.Product
	found := false
	err = h.store.Update(func(data *model.Data) error {
		for i := range data.Products {
			if data.Products[i].ID == id {
				patch.Apply(&data.Products[i])
				updated = data.Products[i].Clone()
				found = true
				return nil
			}
		}
		return errNotFound
	})
	if err != nil && !found {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.log.Error("updating product", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteProduct removes the product with the given id.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	found := false
	err = h.store.Update(func(data *model.Data) error {
		for i := range data.Products {
			if data.Products[i].ID == id {
				data.Products = append(data.Products[:i], data.Products[i+1:]...)
				found = true
				return nil
			}
		}
		return errNotFound
	})
	if err != nil && !found {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.log.Error("deleting product", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	writeSuccess(w, "")
}
