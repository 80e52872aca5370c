// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestSettingsMerge(t *testing.T) {
	base := DefaultSettings()

	merged := base.Merge(Settings{
		SiteName:     "МеталлМастер Плюс",
		ContactPhone: "+7 (123) 456-78-90",
	})

	if merged.SiteName != "МеталлМастер Плюс" {
		t.Errorf("expected overridden site name, got %q", merged.SiteName)
	}
	if merged.ContactPhone != "+7 (123) 456-78-90" {
		t.Errorf("expected overridden phone, got %q", merged.ContactPhone)
	}
	// Empty incoming fields keep the stored value.
	if merged.SiteDescription != base.SiteDescription {
		t.Errorf("description lost on merge: %q", merged.SiteDescription)
	}
	if merged.ContactEmail != base.ContactEmail {
		t.Errorf("email lost on merge: %q", merged.ContactEmail)
	}
}

func TestSettingsMerge_EmptyIncoming(t *testing.T) {
	base := DefaultSettings()
	if got := base.Merge(Settings{}); got != base {
		t.Errorf("merging empty settings changed the record: %+v", got)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.SiteName != "МеталлМастер" {
		t.Errorf("unexpected default site name %q", s.SiteName)
	}
	if s.ContactEmail == "" || s.ContactPhone == "" || s.ContactAddress == "" {
		t.Error("default settings have empty contact fields")
	}
}
