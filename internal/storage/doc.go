// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists ollama-scout state in a local SQLite database.
//
// Two things are kept between runs: the last live model catalog, so
// repeated runs skip the network until it goes stale, and benchmark
// measurements, so real throughput can be compared over time.
//
// # Key Types
//
//   - Store: SQLite-backed implementation of catalog.Cache and
//     benchmark.History
//
// # Usage
//
//	store, err := storage.Open(filepath.Join(dir, "scout.db"))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	loader := catalog.NewLoader(fetcher, store, ttl, limit, overlay, log)
//
// # Storage Location
//
// The database lives next to the config file, in ~/.ollama-scout/scout.db.
package storage
