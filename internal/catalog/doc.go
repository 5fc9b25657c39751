// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog provides the model catalog consumed by the recommender.
//
// A catalog is a list of Entry values, each a model family with one or more
// Variant builds. Entries come from one of four sources:
//
//   - live: the remote Ollama library (Fetcher)
//   - cache: the last live snapshot saved in local storage
//   - stale-cache: an expired snapshot used when the live fetch fails
//   - fallback: a built-in list of well-known models
//
// Loader picks the source, and an optional YAML overlay file adds or
// replaces entries afterwards. All sources produce the same schema, so
// callers treat them interchangeably.
//
// Entries are never mutated after construction. Whether a model is pulled
// locally is computed by the recommender, not stored here.
package catalog
