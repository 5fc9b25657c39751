// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// USE CASES
// =============================================================================

// UseCase is a model category. The set is closed: coding, reasoning, chat.
type UseCase string

const (
	Coding    UseCase = "coding"
	Reasoning UseCase = "reasoning"
	Chat      UseCase = "chat"

	// All is the filter sentinel meaning "no use-case filter". It is never
	// assigned to an entry.
	All UseCase = "all"
)

// UseCases lists the categories in display order.
var UseCases = []UseCase{Coding, Reasoning, Chat}

// Valid reports whether u is one of the three categories.
func (u UseCase) Valid() bool {
	switch u {
	case Coding, Reasoning, Chat:
		return true
	}
	return false
}

// Title returns the display heading for the use case ("Coding").
func (u UseCase) Title() string {
	return cases.Title(language.English).String(string(u))
}

// ParseUseCase parses a filter value. It accepts the three categories and
// "all"; the empty string means "all".
func ParseUseCase(s string) (UseCase, error) {
	u := UseCase(strings.ToLower(strings.TrimSpace(s)))
	if u == "" {
		return All, nil
	}
	if u == All || u.Valid() {
		return u, nil
	}
	return "", fmt.Errorf("unknown use case %q (want all, coding, reasoning or chat)", s)
}

// =============================================================================
// ENTRIES
// =============================================================================

// Variant is a single size/quantization build of a model family.
type Variant struct {
	Tag          string  `json:"tag" yaml:"tag"`
	SizeGB       float64 `json:"size_gb" yaml:"size_gb"`
	Quantization string  `json:"quantization" yaml:"quantization"`
	// ParamSize is a label such as "7B", or "?" when unknown.
	ParamSize string `json:"param_size" yaml:"param_size"`
}

// Entry is a model family with its variants.
type Entry struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Variants    []Variant `json:"tags" yaml:"variants"`
	UseCases    []UseCase `json:"use_cases" yaml:"use_cases"`
}

// HasUseCase reports whether the entry belongs to u. All matches every entry.
func (e *Entry) HasUseCase(u UseCase) bool {
	if u == All || u == "" {
		return true
	}
	for _, c := range e.UseCases {
		if c == u {
			return true
		}
	}
	return false
}

// Label returns the pullable "name:tag" identifier for a variant.
func Label(name, tag string) string {
	return name + ":" + tag
}
