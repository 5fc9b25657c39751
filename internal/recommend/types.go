// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"encoding/json"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
)

// =============================================================================
// FIT LABEL
// =============================================================================

// FitLabel is the coarse verdict on how comfortably a variant fits.
type FitLabel int

const (
	FitUnknown FitLabel = iota
	FitExcellent
	FitGood
	FitPossible
	FitTooLarge
)

// String returns the display name of the fit label.
func (f FitLabel) String() string {
	switch f {
	case FitExcellent:
		return "Excellent"
	case FitGood:
		return "Good"
	case FitPossible:
		return "Possible"
	case FitTooLarge:
		return "Too Large"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the label as its display name.
func (f FitLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// =============================================================================
// RUN MODE
// =============================================================================

// RunMode is where inference executes.
type RunMode int

const (
	ModeUnknown RunMode = iota
	ModeGPU
	ModeMultiGPU
	ModeCPUGPU
	ModeCPU
	ModeNA
)

// String returns the display name of the run mode.
func (m RunMode) String() string {
	switch m {
	case ModeGPU:
		return "GPU"
	case ModeMultiGPU:
		return "Multi-GPU"
	case ModeCPUGPU:
		return "CPU+GPU"
	case ModeCPU:
		return "CPU"
	case ModeNA:
		return "N/A"
	default:
		return "?"
	}
}

// MarshalJSON encodes the mode as its display name.
func (m RunMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// ParseRunMode maps a display name back to a RunMode. Unrecognized names
// give ModeUnknown.
func ParseRunMode(s string) RunMode {
	for m := ModeGPU; m <= ModeNA; m++ {
		if m.String() == s {
			return m
		}
	}
	return ModeUnknown
}

// =============================================================================
// VERDICT / RECOMMENDATION
// =============================================================================

// Verdict is the scorer's output for one variant.
type Verdict struct {
	Score int      `json:"score"`
	Fit   FitLabel `json:"fit"`
	Mode  RunMode  `json:"run_mode"`
	Note  string   `json:"note"`
}

// Feasible reports whether the variant can run at all.
func (v Verdict) Feasible() bool {
	return v.Score >= 0
}

// Recommendation is one ranked model with its chosen variant.
type Recommendation struct {
	Model   catalog.Entry   `json:"model"`
	Variant catalog.Variant `json:"variant"`
	Verdict
	// Pulled is set when the model is already available locally. Score
	// includes PulledBonus in that case.
	Pulled bool `json:"pulled"`
}

// Label returns the pullable "name:tag" identifier.
func (r *Recommendation) Label() string {
	return catalog.Label(r.Model.Name, r.Variant.Tag)
}
