// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Settings is the singleton site configuration record. Updates use
// merge semantics: empty incoming fields leave the stored value alone.
type Settings struct {
	SiteName        string `json:"siteName"`
	SiteDescription string `json:"siteDescription"`
	ContactPhone    string `json:"contactPhone"`
	ContactEmail    string `json:"contactEmail"`
	ContactAddress  string `json:"contactAddress"`
}

// DefaultSettings returns the settings used before an admin ever saves
// the settings form.
func DefaultSettings() Settings {
	return Settings{
		SiteName:        "МеталлМастер",
		SiteDescription: "Качественные двери, заборы и кованые изделия на заказ",
		ContactPhone:    "+7 (XXX) XXX-XX-XX",
		ContactEmail:    "master@metall.ru",
		ContactAddress:  "г. Ваш город, ул. Мастерская, д. 1",
	}
}

// Merge overlays non-empty fields of other onto s and returns the result.
func (s Settings) Merge(other Settings) Settings {
	if other.SiteName != "" {
		s.SiteName = other.SiteName
	}
	if other.SiteDescription != "" {
		s.SiteDescription = other.SiteDescription
	}
	if other.ContactPhone != "" {
		s.ContactPhone = other.ContactPhone
	}
	if other.ContactEmail != "" {
		s.ContactEmail = other.ContactEmail
	}
	if other.ContactAddress != "" {
		s.ContactAddress = other.ContactAddress
	}
	return s
}
