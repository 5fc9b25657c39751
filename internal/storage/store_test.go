// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

var (
	_ catalog.Cache     = (*Store)(nil)
	_ benchmark.History = (*Store)(nil)
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "scout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestCatalog_EmptyStore(t *testing.T) {
	s := openTemp(t)
	snap, err := s.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestCatalog_SaveAndLoad(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	fetched := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []catalog.Entry{{
		Name:        "qwen2.5-coder",
		Description: "Code-specialized Qwen",
		Variants:    []catalog.Variant{{Tag: "7b", SizeGB: 4.7, Quantization: "Q4_K_M", ParamSize: "7B"}},
		UseCases:    []catalog.UseCase{catalog.Coding},
	}}
	require.NoError(t, s.SaveCatalog(ctx, &catalog.Snapshot{Entries: entries, FetchedAt: fetched, URL: "https://example.test"}))

	snap, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, entries, snap.Entries)
	assert.True(t, fetched.Equal(snap.FetchedAt))
	assert.Equal(t, "https://example.test", snap.URL)

	// A second save replaces the first.
	require.NoError(t, s.SaveCatalog(ctx, &catalog.Snapshot{Entries: entries[:0], FetchedAt: fetched.Add(time.Hour)}))
	snap, err = s.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Entries)

	require.NoError(t, s.ClearCatalog(ctx))
	snap, err = s.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestCatalog_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveCatalog(ctx, &catalog.Snapshot{Entries: catalog.Fallback(), FetchedAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	snap, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Entries, len(catalog.Fallback()))
}

func TestClosedStore(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.LoadCatalog(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

// =============================================================================
// BENCHMARK HISTORY TESTS
// =============================================================================

func TestMeasurements_SaveAndList(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &benchmark.Measurement{
		Model: "llama3.2", StartTime: base, Elapsed: 4 * time.Second,
		Words: 100, Tokens: 130, TokensPerSec: 32.5, Rating: benchmark.RatingModerate,
		Estimate: &benchmark.Estimate{Model: "llama3.2", Mode: recommend.ModeGPU, TokensPerSec: 40, Rating: benchmark.RatingModerate},
	}
	second := &benchmark.Measurement{
		Model: "phi3", StartTime: base.Add(time.Minute), Elapsed: 2 * time.Second,
		Words: 150, Tokens: 195, TokensPerSec: 97.5, Rating: benchmark.RatingFast,
	}
	require.NoError(t, s.SaveMeasurement(ctx, first))
	require.NoError(t, s.SaveMeasurement(ctx, second))

	all, err := s.ListMeasurements(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "phi3", all[0].Model)
	assert.Nil(t, all[0].Estimate)
	assert.Equal(t, benchmark.RatingFast, all[0].Rating)

	got := all[1]
	assert.Equal(t, "llama3.2", got.Model)
	assert.True(t, base.Equal(got.StartTime))
	assert.Equal(t, 4*time.Second, got.Elapsed)
	assert.Equal(t, 100, got.Words)
	require.NotNil(t, got.Estimate)
	assert.Equal(t, recommend.ModeGPU, got.Estimate.Mode)
	assert.InDelta(t, 40.0, got.Estimate.TokensPerSec, 0.001)

	only, err := s.ListMeasurements(ctx, "llama3.2", 10)
	require.NoError(t, err)
	assert.Len(t, only, 1)

	limited, err := s.ListMeasurements(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMeasurements_EmptyIsNotNil(t *testing.T) {
	s := openTemp(t)
	ms, err := s.ListMeasurements(context.Background(), "ghost", 5)
	require.NoError(t, err)
	assert.NotNil(t, ms)
	assert.Empty(t, ms)
}
