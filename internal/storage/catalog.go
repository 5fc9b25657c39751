// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
)

// =============================================================================
// CATALOG CACHE
// =============================================================================

// LoadCatalog returns the saved catalog snapshot, or nil when none exists.
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var (
		url       string
		fetchedAt int64
		raw       string
	)
	err = db.QueryRowContext(ctx,
		"SELECT source_url, fetched_at, entries FROM catalog_snapshot WHERE id = 1",
	).Scan(&url, &fetchedAt, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}

	var entries []catalog.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("corrupt catalog snapshot: %w", err)
	}
	return &catalog.Snapshot{
		Entries:   entries,
		FetchedAt: time.Unix(fetchedAt, 0),
		URL:       url,
	}, nil
}

// SaveCatalog replaces the saved snapshot.
func (s *Store) SaveCatalog(ctx context.Context, snap *catalog.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	raw, err := json.Marshal(snap.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO catalog_snapshot (id, source_url, fetched_at, entry_count, entries)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_url = excluded.source_url,
			fetched_at = excluded.fetched_at,
			entry_count = excluded.entry_count,
			entries = excluded.entries`,
		snap.URL, snap.FetchedAt.Unix(), len(snap.Entries), string(raw))
	if err != nil {
		return fmt.Errorf("failed to save catalog snapshot: %w", err)
	}
	return nil
}

// ClearCatalog removes the saved snapshot.
func (s *Store) ClearCatalog(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "DELETE FROM catalog_snapshot")
	return err
}
