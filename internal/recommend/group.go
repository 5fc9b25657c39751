// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import "github.com/sandy-sp/ollama-scout/internal/catalog"

// Groups maps each use case to its recommendations in ranked order.
type Groups map[catalog.UseCase][]Recommendation

// GroupByUseCase buckets recommendations by their model's use cases. A model
// in several categories appears in each of them, at most once per bucket.
// Input order is preserved and buckets are not truncated.
func GroupByUseCase(recs []Recommendation) Groups {
	groups := make(Groups, len(catalog.UseCases))
	seen := make(map[catalog.UseCase]map[string]bool, len(catalog.UseCases))
	for _, uc := range catalog.UseCases {
		groups[uc] = []Recommendation{}
		seen[uc] = map[string]bool{}
	}

	for _, r := range recs {
		for _, uc := range r.Model.UseCases {
			bucket, ok := seen[uc]
			if !ok || bucket[r.Model.Name] {
				continue
			}
			bucket[r.Model.Name] = true
			groups[uc] = append(groups[uc], r)
		}
	}
	return groups
}

// NonEmpty returns the use cases with at least one recommendation, in
// display order.
func (g Groups) NonEmpty() []catalog.UseCase {
	var out []catalog.UseCase
	for _, uc := range catalog.UseCases {
		if len(g[uc]) > 0 {
			out = append(out, uc)
		}
	}
	return out
}
