// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "strings"

// ParseList parses `ollama list` output into base model names,
// deduplicated in first-seen order.
func ParseList(out string) []string {
	return BaseNames(ParseListTags(out))
}

// ParseListTags parses `ollama list` output into full "name:tag"
// references. The header row is skipped, untagged names get ":latest" and
// duplicates are dropped keeping first-seen order.
func ParseListTags(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) <= 1 {
		return []string{}
	}
	var names []string
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return fullTags(names)
}

// BaseNames strips tags and deduplicates, keeping first-seen order.
func BaseNames(refs []string) []string {
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, f := range refs {
		name, _, _ := strings.Cut(f, ":")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func fullTags(refs []string) []string {
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, f := range refs {
		name, tag, _ := strings.Cut(f, ":")
		if name == "" {
			continue
		}
		if tag == "" {
			tag = "latest"
		}
		ref := name + ":" + tag
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}

// ParseVersion extracts the version from `ollama --version` output such as
// "ollama version is 0.5.7". Warnings printed before it are ignored.
func ParseVersion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "version is "); i >= 0 {
			return strings.TrimSpace(line[i+len("version is "):])
		}
	}
	return strings.TrimSpace(out)
}
