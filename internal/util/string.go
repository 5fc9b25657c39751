// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"github.com/mattn/go-runewidth"
)

// ellipsis is appended by TruncateWidth when it cuts a string.
const ellipsis = "..."

// DisplayWidth returns the number of terminal cells s occupies.
// East Asian wide characters and emoji count as two cells.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth cuts s so that it fits in maxWidth cells, ending with "..."
// when anything was removed. Strings that already fit are returned as-is.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

// PadRight pads s with spaces on the right up to width cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// PadLeft pads s with spaces on the left up to width cells.
func PadLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
