// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/metalmaster-go/internal/model"
	"github.com/olegiv/metalmaster-go/internal/store"
	"github.com/olegiv/metalmaster-go/internal/testutil"
)

// newTestServer mounts the API on a fresh store and test server.
func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "data.json"), testutil.TestLoggerSilent())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	h := New(st, testutil.TestLoggerSilent())
	r := chi.NewRouter()
	r.Route("/api", h.Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp
}

func TestGetData_Defaults(t *testing.T) {
	srv, _ := newTestServer(t)

	var data model.Data
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/data", nil, &data)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if data.Products == nil || data.Users == nil || data.Contacts == nil {
		t.Error("collections missing from aggregate")
	}
	if data.Settings.SiteName != "МеталлМастер" {
		t.Errorf("default settings missing: %+v", data.Settings)
	}
}

func TestCreateProduct_AssignsServerFields(t *testing.T) {
	srv, _ := newTestServer(t)

	var created model.Product
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", model.Product{
		Name:        "Дверь входная",
		Category:    model.CategoryDoors,
		Price:       30000,
		Description: "Сталь 2мм",
	}, &created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	if created.ID == 0 {
		t.Error("server did not assign an id")
	}
	if created.DateAdded.IsZero() {
		t.Error("server did not stamp dateAdded")
	}
	if created.Images == nil {
		t.Error("images must serialize as [], not null")
	}
}

func TestCreateProduct_UniqueMonotonicIDs(t *testing.T) {
	srv, _ := newTestServer(t)

	seen := make(map[int64]bool)
	var last int64
	for i := 0; i < 5; i++ {
		var created model.Product
		doJSON(t, http.MethodPost, srv.URL+"/api/products", model.Product{Name: "Товар"}, &created)
		if seen[created.ID] {
			t.Fatalf("duplicate id %d", created.ID)
		}
		if created.ID < last {
			t.Fatalf("ids went backwards: %d after %d", created.ID, last)
		}
		seen[created.ID] = true
		last = created.ID
	}
}

func TestCreateProduct_SanitizesMarkup(t *testing.T) {
	srv, _ := newTestServer(t)

	var created model.Product
	doJSON(t, http.MethodPost, srv.URL+"/api/products", model.Product{
		Name:        `Дверь<script>alert(1)</script>`,
		Description: `<img src=x onerror=alert(1)>Хорошая дверь`,
	}, &created)

	if strings.Contains(created.Name, "<script>") {
		t.Errorf("script tag survived sanitization: %q", created.Name)
	}
	if strings.Contains(created.Description, "<img") {
		t.Errorf("img tag survived sanitization: %q", created.Description)
	}
	if !strings.Contains(created.Description, "Хорошая дверь") {
		t.Errorf("text content lost: %q", created.Description)
	}
}

func TestUpdateProduct_MergesFields(t *testing.T) {
	srv, _ := newTestServer(t)

	var created model.Product
	doJSON(t, http.MethodPost, srv.URL+"/api/products", model.Product{
		Name:        "Забор",
		Category:    model.CategoryFences,
		Price:       10000,
		Description: "Секционный",
	}, &created)

	var updated model.Product
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/products/"+itoa(created.ID),
		map[string]any{"price": 12000}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	if updated.Price != 12000 {
		t.Errorf("price not updated: %d", updated.Price)
	}
	if updated.Name != "Забор" || updated.Category != model.CategoryFences {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if !updated.DateAdded.Equal(created.DateAdded) {
		t.Errorf("dateAdded changed on update: %v vs %v", updated.DateAdded, created.DateAdded)
	}
}

func TestUpdateProduct_Missing(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/products/12345",
		map[string]any{"price": 1}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
}

func TestDeleteProduct(t *testing.T) {
	srv, st := newTestServer(t)

	var created model.Product
	doJSON(t, http.MethodPost, srv.URL+"/api/products", model.Product{Name: "Ковка"}, &created)

	var ack map[string]any
	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/products/"+itoa(created.ID), nil, &ack)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ack["success"] != true {
		t.Errorf("unexpected ack %+v", ack)
	}
	if got := len(st.Data().Products); got != 0 {
		t.Errorf("product not removed, %d left", got)
	}
}

func TestDeleteProduct_Missing(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]any
	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/products/999", nil, &body)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
	if _, ok := body["error"]; !ok {
		t.Errorf("error body missing: %+v", body)
	}
}

func TestCreateUser(t *testing.T) {
	srv, _ := newTestServer(t)

	var created model.User
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users", model.User{
		Name:     "Иван Петров",
		Email:    "user@example.com",
		Password: "user123",
		Role:     model.RoleUser,
	}, &created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if created.ID == 0 || created.DateRegistered.IsZero() {
		t.Errorf("server fields not assigned: %+v", created)
	}
}

func TestUpdateUser_Missing(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/users/1",
		map[string]any{"name": "x"}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
}

func TestCreateContact_DefaultsStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	var created model.Contact
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/contacts", model.Contact{
		Name:    "Пётр",
		Phone:   "+7 (900) 000-00-00",
		Message: "Нужны ворота",
	}, &created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if created.Status != model.StatusNew {
		t.Errorf("status not defaulted: %q", created.Status)
	}
	if created.Date.IsZero() {
		t.Error("date not stamped")
	}
}

func TestUpdateSettings_Merges(t *testing.T) {
	srv, _ := newTestServer(t)

	var merged model.Settings
	doJSON(t, http.MethodPut, srv.URL+"/api/settings",
		map[string]any{"siteName": "МеталлМастер Плюс"}, &merged)

	if merged.SiteName != "МеталлМастер Плюс" {
		t.Errorf("site name not updated: %q", merged.SiteName)
	}
	if merged.ContactEmail == "" {
		t.Error("unmentioned settings field was wiped")
	}
}

func TestSyncAll_ReplacesProvidedCollections(t *testing.T) {
	srv, st := newTestServer(t)

	// Preload server-side users so we can verify they survive a sync
	// that does not mention them.
	doJSON(t, http.MethodPost, srv.URL+"/api/users", model.User{Email: "a@b.c"}, nil)

	var ack map[string]any
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sync", model.SyncRequest{
		Products: []model.Product{{ID: 1, Name: "Дверь"}, {ID: 2, Name: "Забор"}},
	}, &ack)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ack["success"] != true {
		t.Errorf("unexpected ack %+v", ack)
	}

	data := st.Data()
	if len(data.Products) != 2 {
		t.Errorf("products not replaced: %d", len(data.Products))
	}
	if len(data.Users) != 1 {
		t.Errorf("absent collection was touched: %d users", len(data.Users))
	}
}

func TestInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/products", "application/json",
		strings.NewReader("{broken"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
}

func TestInvalidID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/products/abc", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
