// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// paramSizeRegex matches a parameter count such as "7b", "6.7B" or "70b".
var paramSizeRegex = regexp.MustCompile(`(\d+\.?\d*)[bB]`)

// quantizationTokens are checked in order against the lowercased tag.
var quantizationTokens = []string{
	"q2_k", "q3_k", "q4_0", "q4_k_m", "q4_k_s", "q5_0", "q5_k_m",
	"q6_k", "q8_0", "f16", "fp16", "f32",
}

// defaultSizeGB is used when neither a byte count nor a parameter count is
// available.
const defaultSizeGB = 4.0

// q4BytesPerParam approximates GB per billion parameters at 4-bit.
const q4BytesPerParam = 0.55

// SplitName splits "name:tag" at the first colon. A missing tag is "latest".
func SplitName(full string) (name, tag string) {
	if i := strings.Index(full, ":"); i >= 0 {
		return full[:i], full[i+1:]
	}
	return full, "latest"
}

// ParseQuantization infers a quantization label from a tag.
func ParseQuantization(tag string) string {
	lower := strings.ToLower(tag)
	for _, q := range quantizationTokens {
		if strings.Contains(lower, q) {
			return strings.ToUpper(q)
		}
	}
	if strings.Contains(lower, "instruct") || strings.Contains(lower, "chat") {
		return "Q4_K_M"
	}
	return "Q4_0"
}

// ParseParamSize extracts "7B" style labels from text, or "?" when absent.
func ParseParamSize(text string) string {
	m := paramSizeRegex.FindStringSubmatch(text)
	if m == nil {
		return "?"
	}
	return m[1] + "B"
}

// paramSizeFromNameAndTag tries the tag first, then the name.
func paramSizeFromNameAndTag(name, tag string) string {
	if p := ParseParamSize(tag); p != "?" {
		return p
	}
	return ParseParamSize(name)
}

// EstimateSize guesses a footprint in GB from a parameter count in text.
func EstimateSize(text string) float64 {
	m := paramSizeRegex.FindStringSubmatch(text)
	if m == nil {
		return defaultSizeGB
	}
	params, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return defaultSizeGB
	}
	return round1(params * q4BytesPerParam)
}

// bytesToGB converts a byte count to GB rounded to one decimal.
func bytesToGB(b int64) float64 {
	return round1(float64(b) / (1 << 30))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
