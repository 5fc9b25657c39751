// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// DefaultHistoryLimit bounds ListMeasurements when limit <= 0.
const DefaultHistoryLimit = 20

// =============================================================================
// BENCHMARK HISTORY
// =============================================================================

// SaveMeasurement appends a benchmark measurement.
func (s *Store) SaveMeasurement(ctx context.Context, m *benchmark.Measurement) error {
	var (
		estTPS  sql.NullFloat64
		estMode sql.NullString
	)
	if m.Estimate != nil {
		estTPS = sql.NullFloat64{Float64: m.Estimate.TokensPerSec, Valid: true}
		estMode = sql.NullString{String: m.Estimate.Mode.String(), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO benchmark_runs
			(model, started_at, elapsed_ms, words, tokens, tokens_per_sec, est_tokens_per_sec, est_mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Model, m.StartTime.UnixMilli(), m.Elapsed.Milliseconds(),
		m.Words, m.Tokens, m.TokensPerSec, estTPS, estMode)
	if err != nil {
		return fmt.Errorf("failed to save measurement: %w", err)
	}
	return nil
}

// ListMeasurements returns the newest measurements first. An empty model
// lists every model.
func (s *Store) ListMeasurements(ctx context.Context, model string, limit int) ([]benchmark.Measurement, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT model, started_at, elapsed_ms, words, tokens, tokens_per_sec, est_tokens_per_sec, est_mode
		FROM benchmark_runs`
	args := []any{}
	if model != "" {
		query += " WHERE model = ?"
		args = append(args, model)
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	out := []benchmark.Measurement{}
	for rows.Next() {
		var (
			m         benchmark.Measurement
			startedMs int64
			elapsedMs int64
			estTPS    sql.NullFloat64
			estMode   sql.NullString
		)
		if err := rows.Scan(&m.Model, &startedMs, &elapsedMs, &m.Words, &m.Tokens, &m.TokensPerSec, &estTPS, &estMode); err != nil {
			return nil, err
		}
		m.StartTime = time.UnixMilli(startedMs)
		m.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		m.Rating = benchmark.Rate(m.TokensPerSec)
		if estTPS.Valid {
			m.Estimate = &benchmark.Estimate{
				Model:        m.Model,
				Mode:         recommend.ParseRunMode(estMode.String),
				TokensPerSec: estTPS.Float64,
				Rating:       benchmark.Rate(estTPS.Float64),
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
