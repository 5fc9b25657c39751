// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"encoding/json"
	"math"

	"github.com/sandy-sp/ollama-scout/internal/detect"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// =============================================================================
// RATING
// =============================================================================

// Rating is a coarse speed class.
type Rating int

const (
	RatingSlow Rating = iota
	RatingModerate
	RatingFast
)

// String returns the display name of the rating.
func (r Rating) String() string {
	switch r {
	case RatingFast:
		return "Fast"
	case RatingModerate:
		return "Moderate"
	default:
		return "Slow"
	}
}

// MarshalJSON encodes the rating as its display name.
func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// Rate classifies a tokens-per-second figure.
func Rate(tps float64) Rating {
	switch {
	case tps >= fastThreshold:
		return RatingFast
	case tps >= moderateThreshold:
		return RatingModerate
	default:
		return RatingSlow
	}
}

// =============================================================================
// CALIBRATION CONSTANTS
// =============================================================================

// Throughput multipliers and caps are empirical and should be revisited
// against real measurements.
const (
	gpuMultiplier     = 40.0
	gpuCap            = 120.0
	offloadMultiplier = 12.0
	offloadCap        = 45.0
	cpuMultiplier     = 4.0
	cpuCap            = 20.0

	fastThreshold     = 60.0
	moderateThreshold = 25.0

	// minSizeGB guards the divisions against unknown sizes.
	minSizeGB = 1.0
)

// =============================================================================
// ESTIMATES
// =============================================================================

// Estimate is a formula-based speed guess for one recommendation.
type Estimate struct {
	Model        string            `json:"model"`
	Mode         recommend.RunMode `json:"run_mode"`
	TokensPerSec float64           `json:"tokens_per_sec"`
	Rating       Rating            `json:"rating"`
}

// EstimateSpeed returns the formula estimate for a recommendation. Modes
// other than GPU and CPU+GPU use the CPU formula.
func EstimateSpeed(rec *recommend.Recommendation, hw *detect.HardwareProfile) Estimate {
	size := rec.Variant.SizeGB
	if size <= 0 {
		size = minSizeGB
	}

	var tps float64
	switch rec.Mode {
	case recommend.ModeGPU:
		tps = math.Min(hw.BestVRAMGB()/size*gpuMultiplier, gpuCap)
	case recommend.ModeCPUGPU:
		tps = math.Min((hw.BestVRAMGB()+hw.RAMGB)/size*offloadMultiplier, offloadCap)
	default:
		tps = math.Min(float64(hw.CPUThreads)/size*cpuMultiplier, cpuCap)
	}
	tps = round1(tps)

	return Estimate{
		Model:        rec.Label(),
		Mode:         rec.Mode,
		TokensPerSec: tps,
		Rating:       Rate(tps),
	}
}

// EstimateTop estimates the first n recommendations (3 when n <= 0).
func EstimateTop(recs []recommend.Recommendation, hw *detect.HardwareProfile, n int) []Estimate {
	if n <= 0 {
		n = 3
	}
	if n > len(recs) {
		n = len(recs)
	}
	out := make([]Estimate, 0, n)
	for i := range recs[:n] {
		out = append(out, EstimateSpeed(&recs[i], hw))
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
