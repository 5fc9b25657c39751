// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
)

func entry(name string, useCases []catalog.UseCase, sizes ...float64) catalog.Entry {
	e := catalog.Entry{Name: name, Description: name + " model", UseCases: useCases}
	for i, s := range sizes {
		e.Variants = append(e.Variants, catalog.Variant{Tag: fmt.Sprintf("v%d", i), SizeGB: s, Quantization: "Q4_K_M", ParamSize: "?"})
	}
	return e
}

var (
	coding    = []catalog.UseCase{catalog.Coding}
	chat      = []catalog.UseCase{catalog.Chat}
	codeChat  = []catalog.UseCase{catalog.Coding, catalog.Chat}
	reasoning = []catalog.UseCase{catalog.Reasoning, catalog.Chat}
)

func testCatalog() []catalog.Entry {
	return []catalog.Entry{
		entry("big-chat", chat, 80),
		entry("coder", coding, 4, 2),
		entry("chatter", chat, 5),
		entry("thinker", reasoning, 9, 14),
		entry("both", codeChat, 3),
		entry("unknown", chat, 0),
	}
}

// =============================================================================
// RANK TESTS
// =============================================================================

func TestRank_Basic(t *testing.T) {
	hw := gpuHost(10, 32, 16)
	recs := Rank(testCatalog(), hw, Options{UseCase: catalog.All, TopN: 15})

	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Model.Name
	}
	// coder picks its 2 GB variant (98); both 97; chatter 95; thinker 91; unknown 0.
	assert.Equal(t, []string{"coder", "both", "chatter", "thinker", "unknown"}, names)
	assert.Equal(t, "v1", recs[0].Variant.Tag)
	assert.Equal(t, "coder:v1", recs[0].Label())
	assert.Equal(t, 0, recs[len(recs)-1].Score)
}

func TestRank_ExcludesInfeasible(t *testing.T) {
	hw := gpuHost(10, 32, 16)
	recs := Rank(testCatalog(), hw, Options{UseCase: catalog.All, TopN: 100})
	for _, r := range recs {
		assert.GreaterOrEqual(t, r.Score, 0)
		assert.NotEqual(t, "big-chat", r.Model.Name)
	}
}

func TestRank_UseCaseFilter(t *testing.T) {
	hw := gpuHost(10, 32, 16)
	recs := Rank(testCatalog(), hw, Options{UseCase: catalog.Coding, TopN: 15})
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.True(t, r.Model.HasUseCase(catalog.Coding), r.Model.Name)
	}

	empty := Rank(testCatalog(), hw, Options{UseCase: "", TopN: 15})
	assert.Len(t, empty, 5, "empty use case means all")
}

func TestRank_PulledBonus(t *testing.T) {
	hw := gpuHost(10, 32, 16)
	cat := []catalog.Entry{entry("a", chat, 4), entry("b", chat, 4)}

	recs := Rank(cat, hw, Options{TopN: 5, Pulled: PulledSet([]string{"b"})})
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0].Model.Name)
	assert.True(t, recs[0].Pulled)
	assert.False(t, recs[1].Pulled)
	assert.Equal(t, recs[1].Score+PulledBonus, recs[0].Score)
}

func TestPulledSet_StripsTags(t *testing.T) {
	set := PulledSet([]string{"llama3.2:3b", "llama3.2:latest", "phi3"})
	assert.Equal(t, map[string]bool{"llama3.2": true, "phi3": true}, set)
}

func TestRank_DoesNotMutateCatalog(t *testing.T) {
	hw := gpuHost(10, 32, 16)
	cat := testCatalog()
	before := fmt.Sprintf("%+v", cat)

	_ = Rank(cat, hw, Options{TopN: 10, Pulled: PulledSet([]string{"coder"})})
	_ = Rank(cat, hw, Options{TopN: 10, UseCase: catalog.Chat})
	assert.Equal(t, before, fmt.Sprintf("%+v", cat))

	// A second ranking without the pulled set carries no stale flag.
	recs := Rank(cat, hw, Options{TopN: 10})
	for _, r := range recs {
		assert.False(t, r.Pulled, r.Model.Name)
	}
}

func TestRank_StableTies(t *testing.T) {
	hw := gpuHost(24, 64, 16)
	var cat []catalog.Entry
	for i := 0; i < 20; i++ {
		cat = append(cat, entry(fmt.Sprintf("m%02d", i), chat, 4))
	}
	recs := Rank(cat, hw, Options{TopN: 20})
	for i, r := range recs {
		assert.Equal(t, fmt.Sprintf("m%02d", i), r.Model.Name)
	}
}

func TestRank_FirstVariantWinsTies(t *testing.T) {
	hw := gpuHost(24, 64, 16)
	e := entry("tie", chat, 4.2, 4.9)
	recs := Rank([]catalog.Entry{e}, hw, Options{TopN: 1})
	require.Len(t, recs, 1)
	assert.Equal(t, "v0", recs[0].Variant.Tag)
}

func TestRank_EdgeCases(t *testing.T) {
	hw := gpuHost(10, 32, 16)
	assert.Empty(t, Rank(nil, hw, Options{TopN: 10}))
	assert.Empty(t, Rank(testCatalog(), hw, Options{TopN: 0}))
	assert.Empty(t, Rank(testCatalog(), hw, Options{TopN: -3}))
	assert.Empty(t, Rank([]catalog.Entry{entry("huge", chat, 500)}, hw, Options{TopN: 10}))
	assert.Len(t, Rank(testCatalog(), hw, Options{TopN: 2}), 2)
}

func TestRank_EndToEndTooLarge(t *testing.T) {
	hw := gpuHost(10, 32, 16)
	v := ScoreVariant(size(80), hw)
	assert.Equal(t, -1, v.Score)
	assert.Equal(t, "Too Large", v.Fit.String())
	assert.Equal(t, "N/A", v.Mode.String())

	recs := Rank([]catalog.Entry{entry("huge", chat, 80), entry("ok", chat, 4)}, hw, Options{TopN: 10})
	require.Len(t, recs, 1)
	assert.Equal(t, "ok", recs[0].Model.Name)
}

func TestRankConcurrent_MatchesRank(t *testing.T) {
	hw := multiGPUHost(32, 8, 8)
	var cat []catalog.Entry
	for i := 0; i < 200; i++ {
		cat = append(cat, entry(fmt.Sprintf("m%03d", i), codeChat, float64(i%40)+0.5, float64(i%7)))
	}
	opts := Options{UseCase: catalog.All, TopN: 150, Pulled: PulledSet([]string{"m010", "m020", "m150"})}

	want := Rank(cat, hw, opts)
	for _, workers := range []int{0, 1, 3, 16} {
		got, err := RankConcurrent(context.Background(), cat, hw, opts, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestRankConcurrent_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RankConcurrent(ctx, testCatalog(), gpuHost(10, 32, 16), Options{TopN: 5}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBestVariant(t *testing.T) {
	hw := gpuHost(8, 16, 8)
	e := entry("x", chat, 40, 12, 6, 7)
	v, verdict, ok := BestVariant(&e, hw)
	require.True(t, ok)
	assert.Equal(t, "v2", v.Tag)
	assert.Equal(t, 94, verdict.Score)

	none := entry("none", chat, 90)
	_, _, ok = BestVariant(&none, hw)
	assert.False(t, ok)
}

// =============================================================================
// GROUP TESTS
// =============================================================================

func TestGroupByUseCase(t *testing.T) {
	hw := gpuHost(10, 32, 16)
	recs := Rank(testCatalog(), hw, Options{TopN: 15})
	groups := GroupByUseCase(recs)

	require.Len(t, groups, 3)
	names := func(uc catalog.UseCase) []string {
		var out []string
		for _, r := range groups[uc] {
			out = append(out, r.Model.Name)
		}
		return out
	}
	assert.Equal(t, []string{"coder", "both"}, names(catalog.Coding))
	assert.Equal(t, []string{"thinker"}, names(catalog.Reasoning))
	assert.Equal(t, []string{"both", "chatter", "thinker", "unknown"}, names(catalog.Chat))
	assert.Equal(t, catalog.UseCases, groups.NonEmpty())
}

func TestGroupByUseCase_DedupesAndKeepsFirst(t *testing.T) {
	a := Recommendation{Model: entry("dup", chat, 1), Verdict: Verdict{Score: 90}}
	b := Recommendation{Model: entry("dup", chat, 2), Verdict: Verdict{Score: 80}}
	c := Recommendation{Model: entry("other", chat, 2), Verdict: Verdict{Score: 70}}

	groups := GroupByUseCase([]Recommendation{a, b, c})
	require.Len(t, groups[catalog.Chat], 2)
	assert.Equal(t, 90, groups[catalog.Chat][0].Score)
	assert.Empty(t, groups[catalog.Coding])
	assert.Equal(t, []catalog.UseCase{catalog.Chat}, groups.NonEmpty())
}

func TestGroupByUseCase_NoCap(t *testing.T) {
	var recs []Recommendation
	for i := 0; i < 12; i++ {
		recs = append(recs, Recommendation{Model: entry(fmt.Sprintf("m%d", i), chat, 1)})
	}
	assert.Len(t, GroupByUseCase(recs)[catalog.Chat], 12)
}

func TestGroupByUseCase_IgnoresUnknownTags(t *testing.T) {
	r := Recommendation{Model: catalog.Entry{Name: "odd", UseCases: []catalog.UseCase{"vision", catalog.All}}}
	groups := GroupByUseCase([]Recommendation{r})
	assert.Empty(t, groups.NonEmpty())
}

func TestParseRunMode(t *testing.T) {
	for _, m := range []RunMode{ModeGPU, ModeMultiGPU, ModeCPUGPU, ModeCPU, ModeNA} {
		assert.Equal(t, m, ParseRunMode(m.String()))
	}
	assert.Equal(t, ModeUnknown, ParseRunMode("TPU"))
}
