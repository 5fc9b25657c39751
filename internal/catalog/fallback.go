// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import "strings"

// fallbackModels is the built-in catalog used offline or when every other
// source fails. All builds are Q4_K_M.
var fallbackModels = []struct {
	name      string
	paramSize string
	sizeGB    float64
	desc      string
}{
	{"llama3.2", "3B", 2.0, "Meta's compact and efficient Llama 3.2 model"},
	{"llama3.2", "1B", 0.7, "Meta's compact and efficient Llama 3.2 model"},
	{"llama3.1", "8B", 4.7, "Meta's Llama 3.1 with extended context support"},
	{"llama3.3", "70B", 40.0, "Meta's Llama 3.3 flagship model"},
	{"mistral", "7B", 4.1, "Mistral AI's efficient base model"},
	{"deepseek-r1", "7B", 4.7, "DeepSeek's reasoning-focused model"},
	{"deepseek-coder", "6.7B", 3.8, "DeepSeek's model optimized for code generation"},
	{"codellama", "7B", 3.8, "Meta's code-specialized Llama model"},
	{"phi4", "14B", 8.4, "Microsoft's Phi-4 reasoning model"},
	{"phi3", "3.8B", 2.3, "Microsoft's compact and efficient Phi-3 model"},
	{"gemma2", "9B", 5.4, "Google's Gemma 2 open model"},
	{"gemma3", "12B", 7.2, "Google's latest Gemma 3 multimodal model"},
	{"qwen2.5", "7B", 4.4, "Alibaba's multilingual Qwen 2.5 model"},
	{"qwen2.5-coder", "7B", 4.4, "Alibaba's code-specialized Qwen model"},
	{"smollm2", "1.7B", 1.0, "HuggingFace's ultra-compact language model"},
}

// Fallback returns the built-in catalog. Builds of the same family are merged
// into one entry, so llama3.2 carries both its 3b and 1b variants.
func Fallback() []Entry {
	entries := make([]Entry, 0, len(fallbackModels))
	for _, m := range fallbackModels {
		tag := strings.TrimRight(strings.ToLower(m.paramSize), "b") + "b"
		entries = append(entries, Entry{
			Name:        m.name,
			Description: m.desc,
			Variants: []Variant{{
				Tag:          tag,
				SizeGB:       m.sizeGB,
				Quantization: "Q4_K_M",
				ParamSize:    m.paramSize,
			}},
			UseCases: InferUseCases(m.name),
		})
	}
	return mergeByName(entries)
}
