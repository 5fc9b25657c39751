// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema creates every table. Statements are idempotent.
const Schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Last live catalog; at most one row
CREATE TABLE IF NOT EXISTS catalog_snapshot (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    source_url TEXT NOT NULL,
    fetched_at INTEGER NOT NULL,  -- Unix timestamp
    entry_count INTEGER NOT NULL,
    entries TEXT NOT NULL         -- JSON array of catalog entries
);

-- Benchmark measurements
CREATE TABLE IF NOT EXISTS benchmark_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model TEXT NOT NULL,
    started_at INTEGER NOT NULL,  -- Unix milliseconds
    elapsed_ms INTEGER NOT NULL,
    words INTEGER NOT NULL,
    tokens REAL NOT NULL,
    tokens_per_sec REAL NOT NULL,
    est_tokens_per_sec REAL,      -- NULL when no estimate was available
    est_mode TEXT
);

CREATE INDEX IF NOT EXISTS idx_benchmark_runs_model ON benchmark_runs(model);
CREATE INDEX IF NOT EXISTS idx_benchmark_runs_started ON benchmark_runs(started_at);
`

// InitMetadata seeds the metadata table.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
`
