// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"fmt"
	"math"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/detect"
)

// =============================================================================
// CALIBRATION CONSTANTS
// =============================================================================

// These values are empirical. They have no derivation beyond matching
// observed behavior and should be revisited against real measurements.
const (
	// unifiedHeadroomGB is reserved for the OS and apps on unified memory.
	unifiedHeadroomGB = 4.0
	// discreteHeadroomGB is reserved for the OS when offloading to RAM.
	discreteHeadroomGB = 2.0
	// tightFitRatio is the share of a model that must fit in usable unified
	// memory for a swap-prone "Good" verdict.
	tightFitRatio = 0.7

	// fullFitBase is the score ceiling for a complete GPU fit.
	fullFitBase = 100
	// partialBase, partialPenaltyPerGB and partialFloor shape the score of
	// tight fits and CPU+GPU offload.
	partialBase         = 60
	partialPenaltyPerGB = 5
	partialFloor        = 20
	// cpuBase, cpuPenaltyPerGB and cpuFloor shape the CPU-only score.
	cpuBase         = 40
	cpuPenaltyPerGB = 2
	cpuFloor        = 5

	// cpuTokensPerThreadGB is the CPU-only throughput multiplier.
	cpuTokensPerThreadGB = 4.0
	// minCPUTokensPerSec avoids division by zero in the time estimate.
	minCPUTokensPerSec = 0.1
	// sampleResponseTokens is the representative response length.
	sampleResponseTokens = 200
)

// =============================================================================
// RULES
// =============================================================================

// fitContext holds the values every rule reads. It is computed once per
// ScoreVariant call.
type fitContext struct {
	size       float64
	ramGB      float64
	threads    int
	unified    bool
	multiGPU   bool
	gpuCount   int
	bestVRAM   float64
	totalVRAM  float64
	usableUni  float64
	usableRAM  float64
	offloadGB  float64
	cpuSeconds float64
}

func newFitContext(v catalog.Variant, hw *detect.HardwareProfile) *fitContext {
	c := &fitContext{
		size:      v.SizeGB,
		ramGB:     hw.RAMGB,
		threads:   hw.CPUThreads,
		unified:   hw.UnifiedMemory,
		multiGPU:  hw.MultiGPU(),
		gpuCount:  len(hw.GPUs),
		bestVRAM:  hw.BestVRAMGB(),
		totalVRAM: hw.TotalVRAMGB(),
		usableUni: math.Max(hw.RAMGB-unifiedHeadroomGB, 0),
		usableRAM: math.Max(hw.RAMGB-discreteHeadroomGB, 0),
	}
	c.offloadGB = c.size - c.bestVRAM
	if c.size > 0 {
		tps := math.Max(float64(c.threads)/c.size*cpuTokensPerThreadGB, minCPUTokensPerSec)
		c.cpuSeconds = math.RoundToEven(sampleResponseTokens / tps)
	}
	return c
}

// Rule is one named predicate and the verdict it produces.
type Rule struct {
	Name string
	When func(c *fitContext) bool
	Then func(c *fitContext) Verdict
}

// rules is evaluated top to bottom; the first match wins. The final rule
// always matches.
var rules = []Rule{
	{
		Name: "unknown-size",
		When: func(c *fitContext) bool { return c.size <= 0 },
		Then: func(*fitContext) Verdict {
			return Verdict{Score: 0, Fit: FitUnknown, Mode: ModeUnknown, Note: "Size unknown"}
		},
	},
	{
		Name: "unified-fit",
		When: func(c *fitContext) bool { return c.unified && c.usableUni >= c.size },
		Then: func(c *fitContext) Verdict {
			return Verdict{
				Score: fullFitScore(c.size),
				Fit:   FitExcellent,
				Mode:  ModeGPU,
				Note:  fmt.Sprintf("Fits in unified memory (%.1fGB total)", c.ramGB),
			}
		},
	},
	{
		Name: "unified-tight",
		When: func(c *fitContext) bool { return c.unified && c.usableUni >= c.size*tightFitRatio },
		Then: func(c *fitContext) Verdict {
			return Verdict{
				Score: partialScore(c.size - c.usableUni),
				Fit:   FitGood,
				Mode:  ModeGPU,
				Note:  "Tight fit in unified memory, may swap",
			}
		},
	},
	{
		Name: "unified-too-large",
		When: func(c *fitContext) bool { return c.unified },
		Then: func(c *fitContext) Verdict {
			return Verdict{
				Score: -1,
				Fit:   FitTooLarge,
				Mode:  ModeNA,
				Note:  fmt.Sprintf("Needs ~%.1fGB, unified memory: %.1fGB (usable: %.0fGB)", c.size, c.ramGB, c.usableUni),
			}
		},
	},
	{
		// Additive pooling ignores sharding overhead across cards.
		Name: "multi-gpu-pooled",
		When: func(c *fitContext) bool {
			return c.multiGPU && c.bestVRAM < c.size && c.totalVRAM >= c.size
		},
		Then: func(c *fitContext) Verdict {
			return Verdict{
				Score: fullFitScore(c.size),
				Fit:   FitExcellent,
				Mode:  ModeMultiGPU,
				Note:  fmt.Sprintf("Pooled across %d GPUs (%.1fGB combined VRAM)", c.gpuCount, c.totalVRAM),
			}
		},
	},
	{
		Name: "vram-fit",
		When: func(c *fitContext) bool { return c.bestVRAM >= c.size },
		Then: func(c *fitContext) Verdict {
			return Verdict{
				Score: fullFitScore(c.size),
				Fit:   FitExcellent,
				Mode:  ModeGPU,
				Note:  fmt.Sprintf("Fits fully in VRAM (%.1fGB)", c.bestVRAM),
			}
		},
	},
	{
		Name: "partial-offload",
		When: func(c *fitContext) bool { return c.bestVRAM > 0 && c.bestVRAM+c.usableRAM >= c.size },
		Then: func(c *fitContext) Verdict {
			return Verdict{
				Score: partialScore(c.offloadGB),
				Fit:   FitGood,
				Mode:  ModeCPUGPU,
				Note:  fmt.Sprintf("~%.1fGB offloaded to RAM", c.offloadGB),
			}
		},
	},
	{
		Name: "cpu-only",
		When: func(c *fitContext) bool { return c.usableRAM >= c.size },
		Then: func(c *fitContext) Verdict {
			return Verdict{
				Score: max(cpuBase-int(math.Floor(c.size*cpuPenaltyPerGB)), cpuFloor),
				Fit:   FitPossible,
				Mode:  ModeCPU,
				Note:  cpuNote(c.cpuSeconds),
			}
		},
	},
	{
		Name: "too-large",
		When: func(*fitContext) bool { return true },
		Then: func(c *fitContext) Verdict {
			return Verdict{
				Score: -1,
				Fit:   FitTooLarge,
				Mode:  ModeNA,
				Note:  fmt.Sprintf("Needs ~%.1fGB, available: %.1fGB VRAM / %.0fGB RAM", c.size, c.bestVRAM, c.usableRAM),
			}
		},
	},
}

func fullFitScore(size float64) int {
	return fullFitBase - int(math.Floor(size))
}

func partialScore(shortfallGB float64) int {
	return max(partialBase-int(math.Floor(shortfallGB*partialPenaltyPerGB)), partialFloor)
}

func cpuNote(seconds float64) string {
	switch {
	case seconds <= 10:
		return "CPU-only (fast enough)"
	case seconds > 60:
		return fmt.Sprintf("CPU-only (~%.0fm, consider a smaller model)", math.RoundToEven(seconds/60))
	default:
		return fmt.Sprintf("CPU-only (~%.0fs for 200 tokens)", seconds)
	}
}

// Rules returns the rule names in evaluation order.
func Rules() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

// =============================================================================
// SCORER
// =============================================================================

// ScoreVariant classifies a variant against the hardware. It is pure and
// never fails; degenerate inputs produce Unknown or Too Large verdicts.
func ScoreVariant(v catalog.Variant, hw *detect.HardwareProfile) Verdict {
	verdict, _ := ExplainVariant(v, hw)
	return verdict
}

// ExplainVariant is ScoreVariant plus the name of the rule that decided.
func ExplainVariant(v catalog.Variant, hw *detect.HardwareProfile) (Verdict, string) {
	c := newFitContext(v, hw)
	for _, r := range rules {
		if r.When(c) {
			return r.Then(c), r.Name
		}
	}
	// Unreachable: the last rule always matches.
	return Verdict{Fit: FitUnknown, Mode: ModeUnknown, Note: "Size unknown"}, ""
}
