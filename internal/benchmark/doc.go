// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package benchmark estimates and measures inference speed.
//
// Two paths exist side by side:
//
//   - Estimate: a pure formula over the hardware profile and the run mode
//     chosen by the recommender. No I/O.
//   - Measurer: runs a short canned prompt through the local model runner
//     and times it. Only models already pulled are measured, and every
//     failure is reported as "unavailable" rather than as an error.
//
// Measurements can be recorded in a History for later comparison.
//
// # Usage
//
//	for _, est := range benchmark.EstimateTop(recs, hw, 3) {
//	    fmt.Printf("%s: %.1f tok/s (%s)\n", est.Model, est.TokensPerSec, est.Rating)
//	}
//
//	m := benchmark.NewMeasurer(runner, 60*time.Second, log)
//	if res, ok := m.Measure(ctx, "llama3.2:3b", local); ok {
//	    fmt.Printf("measured %.1f tok/s\n", res.TokensPerSec)
//	}
package benchmark
