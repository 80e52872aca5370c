// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package remote is the typed HTTP client for the storefront sync
// service. It issues one logical call per entity operation and owns no
// resilience policy: no retry, no backoff, no timeout beyond what the
// caller configures on the http.Client. Callers catch the single error
// type and fall back to local state.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/olegiv/metalmaster-go/internal/fault"
	"github.com/olegiv/metalmaster-go/internal/model"
)

// ErrorKind distinguishes how a remote call failed.
type ErrorKind string

const (
	// KindTransport means the host was unreachable or the response
	// body could not be read or decoded.
	KindTransport ErrorKind = "transport"

	// KindProtocol means the server answered with a non-success status.
	KindProtocol ErrorKind = "protocol"
)

// Error is the single error type surfaced by all client calls.
type Error struct {
	Kind   ErrorKind
	Op     string // e.g. "GET /api/data"
	Status int    // HTTP status for protocol errors, 0 otherwise
	Err    error  // underlying cause, may be nil for protocol errors
}

func (e *Error) Error() string {
	if e.Kind == KindProtocol {
		return fmt.Sprintf("remote %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

// Unwrap lets callers match any remote failure with
// errors.Is(err, fault.ErrTransport).
func (e *Error) Unwrap() error {
	return fault.ErrTransport
}

// Client issues requests against the sync service API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a Client for the given base URL, e.g.
// "http://localhost:3000/api". A nil httpc selects http.DefaultClient.
func New(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

// SuccessResponse is the body of delete and sync responses.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: err}
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindProtocol, Op: op, Status: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: err}
		}
	}
	return nil
}

// GetAll fetches the full aggregate from GET /data.
func (c *Client) GetAll(ctx context.Context) (model.Data, error) {
	var data model.Data
	err := c.do(ctx, http.MethodGet, "/data", nil, &data)
	return data, err
}

// ListProducts fetches all products.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := c.do(ctx, http.MethodGet, "/products", nil, &products)
	return products, err
}

// CreateProduct posts a new product and returns the stored record.
func (c *Client) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	var created model.Product
	err := c.do(ctx, http.MethodPost, "/products", p, &created)
	return created, err
}

// UpdateProduct applies a partial update to a product by id.
func (c *Client) UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	var updated model.Product
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), patch, &updated)
	return updated, err
}

// DeleteProduct removes a product by id.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, &SuccessResponse{})
}

// ListUsers fetches all users.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// CreateUser posts a new user and returns the stored record.
func (c *Client) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	var created model.User
	err := c.do(ctx, http.MethodPost, "/users", u, &created)
	return created, err
}

// UpdateUser applies a partial update to a user by id.
func (c *Client) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	var updated model.User
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), patch, &updated)
	return updated, err
}

// DeleteUser removes a user by id.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, &SuccessResponse{})
}

// ListContacts fetches all contacts.
func (c *Client) ListContacts(ctx context.Context) ([]model.Contact, error) {
	var contacts []model.Contact
	err := c.do(ctx, http.MethodGet, "/contacts", nil, &contacts)
	return contacts, err
}

// CreateContact posts a new contact and returns the stored record.
func (c *Client) CreateContact(ctx context.Context, contact model.Contact) (model.Contact, error) {
	var created model.Contact
	err := c.do(ctx, http.MethodPost, "/contacts", contact, &created)
	return created, err
}

// GetSettings fetches the settings singleton.
func (c *Client) GetSettings(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	err := c.do(ctx, http.MethodGet, "/settings", nil, &settings)
	return settings, err
}

// UpdateSettings field-merges settings on the server and returns the
// merged record.
func (c *Client) UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	var updated model.Settings
	err := c.do(ctx, http.MethodPut, "/settings", settings, &updated)
	return updated, err
}

// SyncAll wholesale-replaces the provided collections on the server.
func (c *Client) SyncAll(ctx context.Context, req model.SyncRequest) error {
	return c.do(ctx, http.MethodPost, "/sync", req, &SuccessResponse{})
}
