// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import "strings"

// Find looks up an entry by name, case-insensitively. An exact match wins;
// otherwise the first entry whose name starts with name is returned.
// A "name:tag" argument is matched on its name part.
func Find(entries []Entry, name string) (*Entry, bool) {
	base, _ := SplitName(strings.TrimSpace(name))
	want := strings.ToLower(base)
	if want == "" {
		return nil, false
	}
	for i := range entries {
		if strings.ToLower(entries[i].Name) == want {
			return &entries[i], true
		}
	}
	for i := range entries {
		if strings.HasPrefix(strings.ToLower(entries[i].Name), want) {
			return &entries[i], true
		}
	}
	return nil, false
}

// FindVariant returns the variant with the given tag.
func (e *Entry) FindVariant(tag string) (Variant, bool) {
	for _, v := range e.Variants {
		if strings.EqualFold(v.Tag, tag) {
			return v, true
		}
	}
	return Variant{}, false
}
