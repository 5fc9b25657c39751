// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recommend scores model variants against a hardware profile and
// ranks the catalog for display.
//
// The package is pure: no I/O, no logging, no errors. Its inputs are a
// detect.HardwareProfile and a catalog snapshot; its outputs are freshly
// allocated Recommendation values.
//
// # Scoring
//
// ScoreVariant walks an ordered list of named rules (see Rules) and returns
// the verdict of the first rule whose predicate holds. The order encodes the
// priority policy:
//
//   - unknown size
//   - unified memory: fits, tight fit, too large
//   - multi-GPU pooling when no single card is large enough
//   - discrete GPU: fits in VRAM, partial offload, CPU-only, too large
//
// A negative score is the only infeasibility signal.
//
// # Ranking
//
// Rank keeps the best feasible variant per model, adds PulledBonus for
// models already downloaded, and stable-sorts by score. RankConcurrent
// produces the same result while scoring models in parallel.
package recommend
