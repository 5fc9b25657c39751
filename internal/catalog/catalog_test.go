// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// USE CASE TESTS
// =============================================================================

func TestInferUseCases(t *testing.T) {
	tests := []struct {
		name string
		want []UseCase
	}{
		{"qwen2.5-coder", []UseCase{Coding, Chat}},
		{"deepseek-r1", []UseCase{Reasoning}},
		{"llama3.1", []UseCase{Reasoning, Chat}},
		{"phi4", []UseCase{Reasoning, Chat}},
		{"codellama", []UseCase{Coding}},
		{"CodeLlama", []UseCase{Coding}},
		{"totally-unknown", []UseCase{Chat}},
		{"", []UseCase{Chat}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InferUseCases(tc.name))
		})
	}
}

func TestParseUseCase(t *testing.T) {
	for in, want := range map[string]UseCase{"": All, "all": All, "Coding": Coding, " chat ": Chat, "reasoning": Reasoning} {
		got, err := ParseUseCase(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseUseCase("vision")
	assert.Error(t, err)
}

func TestEntry_HasUseCase(t *testing.T) {
	e := Entry{Name: "x", UseCases: []UseCase{Coding}}
	assert.True(t, e.HasUseCase(All))
	assert.True(t, e.HasUseCase(""))
	assert.True(t, e.HasUseCase(Coding))
	assert.False(t, e.HasUseCase(Chat))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Meta's compact and efficient Llama 3.2 model", Describe("llama3.2", nil))
	// Prefix matching walks the family list in order, so "llama" wins.
	assert.Equal(t, "Meta's open-weight large language model", Describe("llama3.2-vision", nil))
	assert.Equal(t, "Optimized for code generation and completion. General-purpose conversational model",
		Describe("zz-model", []UseCase{Coding, Chat}))
	assert.Equal(t, "zz-model model from Ollama library", Describe("zz-model", nil))
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestSplitName(t *testing.T) {
	name, tag := SplitName("llama3.2:3b")
	assert.Equal(t, "llama3.2", name)
	assert.Equal(t, "3b", tag)

	name, tag = SplitName("mistral")
	assert.Equal(t, "mistral", name)
	assert.Equal(t, "latest", tag)

	name, tag = SplitName("hf.co/x:q4:extra")
	assert.Equal(t, "hf.co/x", name)
	assert.Equal(t, "q4:extra", tag)
}

func TestParseQuantization(t *testing.T) {
	tests := map[string]string{
		"7b-q4_k_m":          "Q4_K_M",
		"7b-instruct-q8_0":   "Q8_0",
		"13b-fp16":           "FP16",
		"7b-f16":             "F16",
		"7b-instruct":        "Q4_K_M",
		"7b-chat":            "Q4_K_M",
		"latest":             "Q4_0",
		"70b-text-q2_K":      "Q2_K",
		"3b-instruct-q5_k_m": "Q5_K_M",
	}
	for tag, want := range tests {
		assert.Equal(t, want, ParseQuantization(tag), tag)
	}
}

func TestParseParamSize(t *testing.T) {
	assert.Equal(t, "7B", ParseParamSize("7b"))
	assert.Equal(t, "6.7B", ParseParamSize("6.7b-instruct"))
	assert.Equal(t, "70B", ParseParamSize("70B"))
	assert.Equal(t, "?", ParseParamSize("latest"))

	assert.Equal(t, "8B", paramSizeFromNameAndTag("llama3.1", "8b"))
	assert.Equal(t, "3B", paramSizeFromNameAndTag("starcoder2-3b", "latest"))
	assert.Equal(t, "?", paramSizeFromNameAndTag("mistral", "latest"))
}

func TestEstimateSize(t *testing.T) {
	assert.Equal(t, 3.9, EstimateSize("7b"))
	assert.Equal(t, 38.5, EstimateSize("70b"))
	assert.Equal(t, 4.0, EstimateSize("latest"))
}

// =============================================================================
// FALLBACK / FIND TESTS
// =============================================================================

func TestFallback(t *testing.T) {
	entries := Fallback()
	require.Len(t, entries, 14)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.Name], "duplicate entry %s", e.Name)
		seen[e.Name] = true
		assert.NotEmpty(t, e.Variants, e.Name)
		assert.NotEmpty(t, e.UseCases, e.Name)
		for _, v := range e.Variants {
			assert.Equal(t, "Q4_K_M", v.Quantization)
			assert.Greater(t, v.SizeGB, 0.0)
		}
	}

	llama, ok := Find(entries, "llama3.2")
	require.True(t, ok)
	require.Len(t, llama.Variants, 2)
	assert.Equal(t, "3b", llama.Variants[0].Tag)
	assert.Equal(t, "1b", llama.Variants[1].Tag)

	coder, ok := Find(entries, "deepseek-coder")
	require.True(t, ok)
	assert.Equal(t, "6.7b", coder.Variants[0].Tag)
}

func TestFallback_ReturnsFreshCopies(t *testing.T) {
	a := Fallback()
	a[0].Variants[0].SizeGB = 999
	b := Fallback()
	assert.NotEqual(t, 999.0, b[0].Variants[0].SizeGB)
}

func TestFind(t *testing.T) {
	entries := []Entry{{Name: "qwen2.5-coder"}, {Name: "qwen2.5"}, {Name: "Mistral"}}

	e, ok := Find(entries, "qwen2.5")
	require.True(t, ok)
	assert.Equal(t, "qwen2.5", e.Name, "exact match beats earlier prefix match")

	e, ok = Find(entries, "MISTRAL:7b")
	require.True(t, ok)
	assert.Equal(t, "Mistral", e.Name)

	e, ok = Find(entries, "qwen2.5-c")
	require.True(t, ok)
	assert.Equal(t, "qwen2.5-coder", e.Name)

	_, ok = Find(entries, "llama")
	assert.False(t, ok)
	_, ok = Find(entries, "")
	assert.False(t, ok)
}

func TestEntry_FindVariant(t *testing.T) {
	e := Entry{Name: "x", Variants: []Variant{{Tag: "7b"}, {Tag: "13B"}}}
	v, ok := e.FindVariant("13b")
	require.True(t, ok)
	assert.Equal(t, "13B", v.Tag)
	_, ok = e.FindVariant("70b")
	assert.False(t, ok)
}

func TestMergeByName(t *testing.T) {
	merged := mergeByName([]Entry{
		{Name: "a", Variants: []Variant{{Tag: "1b"}}},
		{Name: "b", Variants: []Variant{{Tag: "7b"}}},
		{Name: "a", Variants: []Variant{{Tag: "3b"}, {Tag: "1b"}}},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].Name)
	assert.Equal(t, []Variant{{Tag: "1b"}, {Tag: "3b"}}, merged[0].Variants)
	assert.Equal(t, "b", merged[1].Name)
}

func TestUseCase_Title(t *testing.T) {
	assert.Equal(t, "Coding", Coding.Title())
	assert.Equal(t, "Reasoning", Reasoning.Title())
	assert.Equal(t, "All", All.Title())
}
