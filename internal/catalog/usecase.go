// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import "strings"

// useCasePatterns maps each category to name fragments that identify it.
// A model matches a category when its lowercased name contains any fragment.
var useCasePatterns = []struct {
	useCase  UseCase
	patterns []string
}{
	{Coding, []string{
		"codellama", "deepseek-coder", "codegemma", "starcoder", "starcoder2",
		"codestral", "qwen2.5-coder", "qwen3-coder", "granite-code", "magicoder",
	}},
	{Reasoning, []string{
		"deepseek-r1", "qwq", "phi4", "phi3", "llama3.3", "llama3.1",
		"mistral-large", "command-r-plus", "mixtral", "deepseek-v3",
	}},
	{Chat, []string{
		"llama3.2", "llama3.1", "llama3", "mistral", "gemma2", "gemma3", "gemma",
		"qwen2.5", "qwen3", "phi3", "phi4", "smollm2", "hermes3", "openhermes",
		"neural-chat", "dolphin-mixtral", "llava", "bakllava",
	}},
}

// InferUseCases returns the categories a model name belongs to, in display
// order. Names matching nothing default to chat.
func InferUseCases(name string) []UseCase {
	lower := strings.ToLower(name)
	var cases []UseCase
	for _, uc := range useCasePatterns {
		for _, p := range uc.patterns {
			if strings.Contains(lower, p) {
				cases = append(cases, uc.useCase)
				break
			}
		}
	}
	if len(cases) == 0 {
		return []UseCase{Chat}
	}
	return cases
}

// familyDescriptions is searched exact-match first, then by prefix in
// declaration order.
var familyDescriptions = []struct{ family, desc string }{
	{"llama", "Meta's open-weight large language model"},
	{"llama3", "Meta's Llama 3 general-purpose model"},
	{"llama3.1", "Meta's Llama 3.1 with extended context support"},
	{"llama3.2", "Meta's compact and efficient Llama 3.2 model"},
	{"llama3.3", "Meta's Llama 3.3 flagship model"},
	{"mistral", "Mistral AI's efficient base model"},
	{"mixtral", "Mistral AI's sparse mixture-of-experts model"},
	{"mistral-large", "Mistral AI's largest and most capable model"},
	{"codellama", "Meta's code-specialized Llama model"},
	{"deepseek-coder", "DeepSeek's model optimized for code generation"},
	{"deepseek-r1", "DeepSeek's reasoning-focused model"},
	{"deepseek-v3", "DeepSeek V3 large language model"},
	{"deepseek-v3.1", "DeepSeek V3.1 improved large language model"},
	{"deepseek-v3.2", "DeepSeek V3.2 latest large language model"},
	{"phi3", "Microsoft's compact and efficient Phi-3 model"},
	{"phi4", "Microsoft's Phi-4 reasoning model"},
	{"gemma", "Google's lightweight open model"},
	{"gemma2", "Google's Gemma 2 open model"},
	{"gemma3", "Google's latest Gemma 3 multimodal model"},
	{"qwen2.5", "Alibaba's multilingual Qwen 2.5 model"},
	{"qwen2.5-coder", "Alibaba's code-specialized Qwen model"},
	{"qwen3", "Alibaba's Qwen 3 next-generation model"},
	{"qwen3-coder", "Alibaba's Qwen 3 code-specialized model"},
	{"smollm2", "HuggingFace's ultra-compact language model"},
	{"starcoder", "BigCode's code generation model"},
	{"starcoder2", "BigCode's improved code generation model"},
	{"codegemma", "Google's code-specialized Gemma model"},
	{"codestral", "Mistral's code-specialized model"},
	{"command-r-plus", "Cohere's enterprise command model"},
	{"llava", "Large Language and Vision Assistant multimodal model"},
	{"bakllava", "BakLLaVA multimodal vision-language model"},
	{"hermes3", "Nous Research's Hermes 3 instruction-tuned model"},
	{"openhermes", "Nous Research's OpenHermes chat model"},
	{"neural-chat", "Intel's neural chat optimized model"},
	{"dolphin-mixtral", "Dolphin fine-tuned Mixtral model"},
	{"granite-code", "IBM's Granite code model"},
	{"magicoder", "Code generation model trained on synthetic data"},
}

var useCaseDescriptions = map[UseCase]string{
	Coding:    "Optimized for code generation and completion",
	Reasoning: "Designed for complex reasoning and analysis",
	Chat:      "General-purpose conversational model",
}

// Describe returns a description for a model that has none: the known
// family text (exact, then prefix), else the joined category texts, else a
// generic line.
func Describe(name string, useCases []UseCase) string {
	lower := strings.ToLower(name)
	for _, f := range familyDescriptions {
		if f.family == lower {
			return f.desc
		}
	}
	for _, f := range familyDescriptions {
		if strings.HasPrefix(lower, f.family) {
			return f.desc
		}
	}

	var parts []string
	for _, uc := range useCases {
		if d := useCaseDescriptions[uc]; d != "" {
			parts = append(parts, d)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ". ")
	}
	return name + " model from Ollama library"
}
