// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/detect"
)

// =============================================================================
// HARDWARE FIXTURES
// =============================================================================

func gpuHost(vramGB, ramGB float64, threads int) *detect.HardwareProfile {
	hw := &detect.HardwareProfile{OS: "Linux", CPUName: "Test CPU", CPUCores: threads / 2, CPUThreads: threads, RAMGB: ramGB}
	if vramGB > 0 {
		hw.GPUs = []detect.GPU{{Name: "Test GPU", VRAMMB: int(vramGB * 1024)}}
	}
	return hw
}

func multiGPUHost(ramGB float64, vramGB ...float64) *detect.HardwareProfile {
	hw := gpuHost(0, ramGB, 16)
	for _, v := range vramGB {
		hw.GPUs = append(hw.GPUs, detect.GPU{Name: "Card", VRAMMB: int(v * 1024)})
	}
	return hw
}

func unifiedHost(ramGB float64) *detect.HardwareProfile {
	return &detect.HardwareProfile{
		OS: "Darwin", CPUName: "Apple M2", CPUCores: 8, CPUThreads: 8, RAMGB: ramGB,
		UnifiedMemory: true,
		GPUs:          []detect.GPU{{Name: "Apple M2 (Unified Memory)", VRAMMB: int(ramGB * 1024)}},
	}
}

func size(gb float64) catalog.Variant {
	return catalog.Variant{Tag: "test", SizeGB: gb, Quantization: "Q4_K_M", ParamSize: "7B"}
}

// =============================================================================
// RULE TESTS
// =============================================================================

func TestScoreVariant_Table(t *testing.T) {
	tests := []struct {
		name    string
		hw      *detect.HardwareProfile
		size    float64
		rule    string
		score   int
		fit     FitLabel
		mode    RunMode
		noteHas string
	}{
		{"unknown size", gpuHost(24, 64, 16), 0, "unknown-size", 0, FitUnknown, ModeUnknown, "Size unknown"},
		{"negative size", gpuHost(24, 64, 16), -3, "unknown-size", 0, FitUnknown, ModeUnknown, "Size unknown"},
		{"vram fit", gpuHost(10, 32, 16), 4, "vram-fit", 96, FitExcellent, ModeGPU, "10"},
		{"vram exact", gpuHost(8, 32, 16), 8, "vram-fit", 92, FitExcellent, ModeGPU, "Fits fully in VRAM (8.0GB)"},
		{"partial offload", gpuHost(8, 32, 16), 12.5, "partial-offload", 38, FitGood, ModeCPUGPU, "~4.5GB offloaded to RAM"},
		{"offload floor", gpuHost(4, 64, 16), 40, "partial-offload", 20, FitGood, ModeCPUGPU, "~36.0GB offloaded"},
		{"too large discrete", gpuHost(10, 32, 16), 80, "too-large", -1, FitTooLarge, ModeNA, "Needs ~80.0GB, available: 10.0GB VRAM / 30GB RAM"},
		{"cpu seconds", gpuHost(0, 16, 8), 4, "cpu-only", 32, FitPossible, ModeCPU, "(~25s for 200 tokens)"},
		{"cpu fast", gpuHost(0, 16, 32), 1, "cpu-only", 38, FitPossible, ModeCPU, "CPU-only (fast enough)"},
		{"cpu minutes", gpuHost(0, 64, 4), 40, "cpu-only", 5, FitPossible, ModeCPU, "CPU-only (~8m, consider a smaller model)"},
		{"cpu too large", gpuHost(0, 8, 8), 7, "too-large", -1, FitTooLarge, ModeNA, "available: 0.0GB VRAM / 6GB RAM"},
		{"zero hardware", &detect.HardwareProfile{}, 1, "too-large", -1, FitTooLarge, ModeNA, "Needs ~1.0GB"},
		{"unified fit", unifiedHost(16), 8, "unified-fit", 92, FitExcellent, ModeGPU, "Fits in unified memory (16.0GB total)"},
		{"unified tight", unifiedHost(16), 14, "unified-tight", 50, FitGood, ModeGPU, "Tight fit in unified memory"},
		{"unified too large", unifiedHost(16), 40, "unified-too-large", -1, FitTooLarge, ModeNA, "Needs ~40.0GB, unified memory: 16.0GB (usable: 12GB)"},
		{"unified tiny ram", unifiedHost(2), 1, "unified-too-large", -1, FitTooLarge, ModeNA, "usable: 0GB"},
		{"multi pooled", multiGPUHost(64, 8, 8), 12, "multi-gpu-pooled", 88, FitExcellent, ModeMultiGPU, "2 GPUs"},
		{"multi single wins", multiGPUHost(64, 10, 10), 4, "vram-fit", 96, FitExcellent, ModeGPU, "Fits fully in VRAM"},
		{"multi falls to offload", multiGPUHost(64, 8, 8), 20, "partial-offload", 20, FitGood, ModeCPUGPU, "~12.0GB offloaded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, rule := ExplainVariant(size(tc.size), tc.hw)
			assert.Equal(t, tc.rule, rule)
			assert.Equal(t, tc.score, v.Score)
			assert.Equal(t, tc.fit, v.Fit)
			assert.Equal(t, tc.mode, v.Mode)
			assert.Contains(t, v.Note, tc.noteHas)
		})
	}
}

func TestScoreVariant_UnknownSizeIgnoresHardware(t *testing.T) {
	hosts := []*detect.HardwareProfile{gpuHost(0, 0, 1), gpuHost(80, 512, 64), unifiedHost(128), multiGPUHost(32, 8, 8, 8)}
	for _, hw := range hosts {
		v := ScoreVariant(size(0), hw)
		assert.Equal(t, 0, v.Score)
		assert.Equal(t, FitUnknown, v.Fit)
		assert.Equal(t, "?", v.Mode.String())
	}
}

func TestScoreVariant_FullVRAMFitFormula(t *testing.T) {
	hw := gpuHost(24, 64, 16)
	for _, s := range []float64{0.5, 1, 3.8, 7.2, 12, 23.9, 24} {
		v := ScoreVariant(size(s), hw)
		assert.Equal(t, FitExcellent, v.Fit, "size %v", s)
		assert.Equal(t, ModeGPU, v.Mode, "size %v", s)
		assert.Equal(t, 100-int(s), v.Score, "size %v", s)
	}
}

func TestScoreVariant_Monotonic(t *testing.T) {
	hosts := map[string]*detect.HardwareProfile{
		"gpu":     gpuHost(8, 32, 16),
		"cpu":     gpuHost(0, 64, 8),
		"unified": unifiedHost(32),
		"multi":   multiGPUHost(32, 8, 8),
	}
	for name, hw := range hosts {
		for s := 0.5; s < 80; s += 0.5 {
			small, large := ScoreVariant(size(s), hw), ScoreVariant(size(s+0.5), hw)
			if small.Fit == large.Fit && small.Mode == large.Mode && small.Score < large.Score {
				t.Errorf("%s: size %.1f scored %d < size %.1f scored %d", name, s, small.Score, s+0.5, large.Score)
			}
		}
	}
}

func TestScoreVariant_UnifiedIgnoresVRAMFields(t *testing.T) {
	a := unifiedHost(24)
	b := unifiedHost(24)
	b.GPUs = []detect.GPU{{Name: "bogus", VRAMMB: 1}, {Name: "bogus2", VRAMMB: 999999}}

	for s := 1.0; s <= 40; s += 1.5 {
		assert.Equal(t, ScoreVariant(size(s), a), ScoreVariant(size(s), b), "size %v", s)
	}
}

func TestScoreVariant_FeasibleNeverNegativeOtherwise(t *testing.T) {
	for s := 0.0; s < 100; s += 0.7 {
		v := ScoreVariant(size(s), gpuHost(6, 16, 8))
		if v.Fit == FitTooLarge {
			assert.Equal(t, -1, v.Score)
			assert.Equal(t, ModeNA, v.Mode)
		} else {
			assert.True(t, v.Feasible(), "size %v", s)
		}
	}
}

func TestRules_OrderAndNames(t *testing.T) {
	names := Rules()
	assert.Equal(t, "unknown-size", names[0])
	assert.Equal(t, "too-large", names[len(names)-1])

	idx := map[string]int{}
	for i, n := range names {
		idx[n] = i
	}
	assert.Less(t, idx["unified-too-large"], idx["multi-gpu-pooled"])
	assert.Less(t, idx["multi-gpu-pooled"], idx["vram-fit"])
	assert.Less(t, idx["partial-offload"], idx["cpu-only"])
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Excellent", FitExcellent.String())
	assert.Equal(t, "Good", FitGood.String())
	assert.Equal(t, "Possible", FitPossible.String())
	assert.Equal(t, "Too Large", FitTooLarge.String())
	assert.Equal(t, "Unknown", FitUnknown.String())

	modes := []RunMode{ModeGPU, ModeMultiGPU, ModeCPUGPU, ModeCPU, ModeNA, ModeUnknown}
	got := make([]string, len(modes))
	for i, m := range modes {
		got[i] = m.String()
	}
	assert.Equal(t, "GPU,Multi-GPU,CPU+GPU,CPU,N/A,?", strings.Join(got, ","))
}
