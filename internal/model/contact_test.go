// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses {
		if !IsValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if IsValidStatus("done") {
		t.Error("expected unknown status to be rejected")
	}
	if IsValidStatus("") {
		t.Error("expected empty status to be rejected")
	}
}

func TestContact_IDOmittedWhenEmpty(t *testing.T) {
	// Records created before contacts carried ids must round-trip
	// without growing an empty id field.
	raw, err := json.Marshal(Contact{Name: "Иван", Phone: "+7", Message: "hi"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(raw), `"id"`) {
		t.Errorf("empty id serialized: %s", raw)
	}
}
