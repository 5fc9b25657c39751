// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/detect"
)

// PulledBonus is added to the score of models already available locally.
const PulledBonus = 10

// Options control a ranking run.
type Options struct {
	// UseCase filters entries; catalog.All (or empty) disables the filter.
	UseCase catalog.UseCase
	// Pulled holds base names of locally available models.
	Pulled map[string]bool
	// TopN caps the result length. Zero or less yields an empty result.
	TopN int
}

// PulledSet builds the Pulled lookup from a list of names. Tags are
// stripped, so "llama3.2:3b" marks the whole llama3.2 family.
func PulledSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		name, _ := catalog.SplitName(n)
		set[name] = true
	}
	return set
}

// BestVariant returns the highest-scoring feasible variant of an entry.
// Ties keep the first variant in catalog order. ok is false when no variant
// is feasible.
func BestVariant(e *catalog.Entry, hw *detect.HardwareProfile) (v catalog.Variant, verdict Verdict, ok bool) {
	for _, cand := range e.Variants {
		vd := ScoreVariant(cand, hw)
		if !vd.Feasible() {
			continue
		}
		if !ok || vd.Score > verdict.Score {
			v, verdict, ok = cand, vd, true
		}
	}
	return v, verdict, ok
}

// recommendEntry builds the recommendation for one entry, or nil when the
// entry is filtered out or nothing fits.
func recommendEntry(e *catalog.Entry, hw *detect.HardwareProfile, opts *Options) *Recommendation {
	if !e.HasUseCase(opts.UseCase) {
		return nil
	}
	v, verdict, ok := BestVariant(e, hw)
	if !ok {
		return nil
	}
	pulled := opts.Pulled[e.Name]
	if pulled {
		verdict.Score += PulledBonus
	}
	return &Recommendation{Model: *e, Variant: v, Verdict: verdict, Pulled: pulled}
}

// Rank scores every entry and returns at most opts.TopN recommendations,
// best first. Equal scores keep catalog order. The catalog is not modified.
func Rank(entries []catalog.Entry, hw *detect.HardwareProfile, opts Options) []Recommendation {
	if opts.TopN <= 0 {
		return []Recommendation{}
	}
	slots := make([]*Recommendation, len(entries))
	for i := range entries {
		slots[i] = recommendEntry(&entries[i], hw, &opts)
	}
	return finalize(slots, opts.TopN)
}

// RankConcurrent is Rank with entries scored in parallel by at most workers
// goroutines (GOMAXPROCS when workers <= 0). The result is identical to
// Rank's. It only fails when ctx is cancelled.
func RankConcurrent(ctx context.Context, entries []catalog.Entry, hw *detect.HardwareProfile, opts Options, workers int) ([]Recommendation, error) {
	if opts.TopN <= 0 {
		return []Recommendation{}, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	slots := make([]*Recommendation, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = recommendEntry(&entries[i], hw, &opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return finalize(slots, opts.TopN), nil
}

// finalize compacts the per-entry slots in catalog order, stable-sorts by
// descending score and truncates.
func finalize(slots []*Recommendation, topN int) []Recommendation {
	recs := make([]Recommendation, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			recs = append(recs, *r)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs
}
