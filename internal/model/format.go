// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rubPrinter = message.NewPrinter(language.Russian)

// FormatPrice renders a price with Russian digit grouping, e.g.
// 15000 -> "15 000 руб.".
func FormatPrice(price int64) string {
	return rubPrinter.Sprintf("%d руб.", price)
}

// FormatDate renders a timestamp in the DD.MM.YYYY form used across
// the storefront UI.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
