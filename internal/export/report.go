// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/detect"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// Generator identifies the producing tool in report metadata.
const Generator = "ollama-scout"

// =============================================================================
// REPORT
// =============================================================================

// Section is one titled table of recommendations.
type Section struct {
	Title string `json:"title"`
	// UseCase is empty for a flat list.
	UseCase         catalog.UseCase            `json:"use_case,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// Report is the data rendered by an Exporter.
type Report struct {
	ID            string                  `json:"report_id"`
	GeneratedAt   time.Time               `json:"generated"`
	Generator     string                  `json:"generator"`
	CatalogSource string                  `json:"catalog_source,omitempty"`
	Hardware      *detect.HardwareProfile `json:"hardware"`
	Sections      []Section               `json:"sections"`
	Estimates     []benchmark.Estimate    `json:"estimates,omitempty"`
	Measurements  []benchmark.Measurement `json:"measurements,omitempty"`
}

// NewReport creates an empty report with a fresh id.
func NewReport(hw *detect.HardwareProfile, now time.Time) *Report {
	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Generator:   Generator,
		Hardware:    hw,
		Sections:    []Section{},
	}
}

// AddGroups adds one section per non-empty use case, in display order.
func (r *Report) AddGroups(groups recommend.Groups) {
	for _, uc := range groups.NonEmpty() {
		r.Sections = append(r.Sections, Section{
			Title:           uc.Title() + " Models",
			UseCase:         uc,
			Recommendations: groups[uc],
		})
	}
}

// AddFlat adds a single section.
func (r *Report) AddFlat(title string, recs []recommend.Recommendation) {
	if len(recs) == 0 {
		return
	}
	r.Sections = append(r.Sections, Section{Title: title, Recommendations: recs})
}

// Empty reports whether there is nothing to recommend.
func (r *Report) Empty() bool {
	return len(r.Sections) == 0
}
