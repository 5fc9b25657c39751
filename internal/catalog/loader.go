// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Source names where a loaded catalog came from.
type Source string

const (
	SourceLive       Source = "live"
	SourceCache      Source = "cache"
	SourceStaleCache Source = "stale-cache"
	SourceFallback   Source = "fallback"
)

// Snapshot is a catalog saved by a Cache.
type Snapshot struct {
	Entries   []Entry
	FetchedAt time.Time
	URL       string
}

// Age returns how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Cache persists the last live catalog.
type Cache interface {
	// LoadCatalog returns the saved snapshot, or nil when none exists.
	LoadCatalog(ctx context.Context) (*Snapshot, error)
	SaveCatalog(ctx context.Context, snap *Snapshot) error
}

// Remote fetches the live catalog.
type Remote interface {
	Fetch(ctx context.Context, limit int) ([]Entry, error)
	URL() string
}

// LoadOptions control a single load.
type LoadOptions struct {
	// Offline skips the network and the cache entirely.
	Offline bool
	// ForceRefresh ignores a fresh cache.
	ForceRefresh bool
}

// LoadResult is the catalog plus where it came from.
type LoadResult struct {
	Entries   []Entry
	Source    Source
	FetchedAt time.Time
	// FetchErr is set when the live fetch failed and an older source was used.
	FetchErr error
}

// Loader chooses a catalog source and applies the custom-models overlay.
type Loader struct {
	Remote      Remote
	Cache       Cache
	TTL         time.Duration
	Limit       int
	OverlayPath string
	Log         zerolog.Logger

	now func() time.Time
}

// NewLoader creates a loader. cache may be nil.
func NewLoader(remote Remote, cache Cache, ttl time.Duration, limit int, overlayPath string, log zerolog.Logger) *Loader {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Loader{
		Remote:      remote,
		Cache:       cache,
		TTL:         ttl,
		Limit:       limit,
		OverlayPath: overlayPath,
		Log:         log,
		now:         time.Now,
	}
}

// Load returns a catalog using this policy:
//  1. offline: built-in fallback
//  2. fresh cache (younger than TTL) unless forced: cache
//  3. live fetch, saved to the cache on success
//  4. fetch failed: stale cache if present, else built-in fallback
//
// The overlay is applied to every source. Load only errors when the
// overlay file cannot be parsed.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	res := l.load(ctx, opts)

	overlay, err := LoadOverlay(l.OverlayPath)
	if err != nil {
		return nil, err
	}
	if len(overlay) > 0 {
		res.Entries = ApplyOverlay(res.Entries, overlay)
		l.Log.Debug().Int("entries", len(overlay)).Msg("applied custom models")
	}
	return res, nil
}

func (l *Loader) load(ctx context.Context, opts LoadOptions) *LoadResult {
	if opts.Offline {
		return &LoadResult{Entries: Fallback(), Source: SourceFallback}
	}

	snap := l.cached(ctx)
	if snap != nil && !opts.ForceRefresh && snap.Age(l.now()) < l.TTL {
		return &LoadResult{Entries: snap.Entries, Source: SourceCache, FetchedAt: snap.FetchedAt}
	}

	if l.Remote != nil {
		entries, err := l.Remote.Fetch(ctx, l.Limit)
		if err == nil {
			fetchedAt := l.now()
			l.save(ctx, &Snapshot{Entries: entries, FetchedAt: fetchedAt, URL: l.Remote.URL()})
			return &LoadResult{Entries: entries, Source: SourceLive, FetchedAt: fetchedAt}
		}
		l.Log.Warn().Err(err).Msg("live catalog unavailable")
		if snap != nil {
			return &LoadResult{Entries: snap.Entries, Source: SourceStaleCache, FetchedAt: snap.FetchedAt, FetchErr: err}
		}
		return &LoadResult{Entries: Fallback(), Source: SourceFallback, FetchErr: err}
	}

	if snap != nil {
		return &LoadResult{Entries: snap.Entries, Source: SourceStaleCache, FetchedAt: snap.FetchedAt}
	}
	return &LoadResult{Entries: Fallback(), Source: SourceFallback}
}

func (l *Loader) cached(ctx context.Context) *Snapshot {
	if l.Cache == nil {
		return nil
	}
	snap, err := l.Cache.LoadCatalog(ctx)
	if err != nil {
		l.Log.Debug().Err(err).Msg("catalog cache unreadable")
		return nil
	}
	if snap != nil && len(snap.Entries) == 0 {
		return nil
	}
	return snap
}

func (l *Loader) save(ctx context.Context, snap *Snapshot) {
	if l.Cache == nil {
		return
	}
	if err := l.Cache.SaveCatalog(ctx, snap); err != nil {
		l.Log.Warn().Err(err).Msg("failed to save catalog cache")
	}
}
