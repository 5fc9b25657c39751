// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrEmptyCatalog is returned when the remote library answers with no models.
var ErrEmptyCatalog = errors.New("model library returned an empty model list (use --offline for built-in models)")

// FetchError reports a transport or status failure talking to the library.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	msg := "failed to fetch model list from " + e.URL
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg + " (use --offline to skip the live fetch)"
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// retryable reports whether another attempt may succeed.
func (e *FetchError) retryable() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// =============================================================================
// FETCHER CONFIGURATION
// =============================================================================

// DefaultURL is the public Ollama library endpoint.
const DefaultURL = "https://ollama.com/api/tags"

// FetcherConfig holds options for the remote library fetcher.
type FetcherConfig struct {
	// URL of the library endpoint (default: DefaultURL)
	URL string

	// Timeout for each request (default: 15s)
	Timeout time.Duration

	// MaxRetries after the first attempt (default: 2)
	MaxRetries int

	// RetryDelay is the minimum spacing between attempts (default: 1s)
	RetryDelay time.Duration
}

// DefaultFetcherConfig returns the default fetcher configuration.
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		URL:        DefaultURL,
		Timeout:    15 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Second,
	}
}

// =============================================================================
// FETCHER
// =============================================================================

// Fetcher downloads and normalizes the remote model library.
//
// The Fetcher is safe for concurrent use.
type Fetcher struct {
	config     *FetcherConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewFetcher creates a fetcher, filling defaults for zero config values.
func NewFetcher(config *FetcherConfig, log zerolog.Logger) *Fetcher {
	if config == nil {
		config = DefaultFetcherConfig()
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	return &Fetcher{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Every(config.RetryDelay), 1),
		log:        log,
	}
}

// URL returns the endpoint being fetched.
func (f *Fetcher) URL() string {
	return f.config.URL
}

// rawItem is one model as returned by the library endpoint.
type rawItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        int64  `json:"size"`
	Details     *struct {
		ParameterSize     string `json:"parameter_size"`
		QuantizationLevel string `json:"quantization_level"`
	} `json:"details"`
}

// Fetch downloads the library and returns at most limit entries. A limit of
// zero or less returns everything.
func (f *Fetcher) Fetch(ctx context.Context, limit int) ([]Entry, error) {
	var body []byte
	var err error
	for attempt := 0; attempt <= f.config.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: f.config.URL, Cause: err}
		}
		body, err = f.get(ctx)
		if err == nil {
			break
		}
		var fe *FetchError
		if !errors.As(err, &fe) || !fe.retryable() {
			return nil, err
		}
		f.log.Debug().Err(err).Int("attempt", attempt+1).Msg("catalog fetch failed")
	}
	if err != nil {
		return nil, err
	}

	items, err := decodeItems(body)
	if err != nil {
		return nil, &FetchError{URL: f.config.URL, Cause: err}
	}
	entries := normalizeItems(items)
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	f.log.Debug().Int("entries", len(entries)).Msg("catalog fetched")
	return entries, nil
}

func (f *Fetcher) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: f.config.URL, Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.config.URL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: f.config.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: f.config.URL, Cause: err}
	}
	return body, nil
}

// decodeItems accepts {"models": [...]} or a bare array.
func decodeItems(body []byte) ([]rawItem, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var items []rawItem
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode model list: %w", err)
		}
		return items, nil
	}
	var wrapped struct {
		Models []rawItem `json:"models"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	return wrapped.Models, nil
}

// normalizeItems turns raw library items into entries, filling gaps in
// description, size, parameter count and quantization. Items sharing a base
// name are merged.
func normalizeItems(items []rawItem) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		name, tag := SplitName(item.Name)
		useCases := InferUseCases(name)

		desc := item.Description
		if desc == "" {
			desc = Describe(name, useCases)
		}

		size := EstimateSize(tag)
		if item.Size > 0 {
			size = bytesToGB(item.Size)
		}

		var paramSize, quant string
		if item.Details != nil {
			paramSize = item.Details.ParameterSize
			quant = item.Details.QuantizationLevel
		}
		if paramSize == "" {
			paramSize = paramSizeFromNameAndTag(name, tag)
		}
		if quant == "" {
			quant = ParseQuantization(tag)
		}

		entries = append(entries, Entry{
			Name:        name,
			Description: desc,
			Variants: []Variant{{
				Tag:          tag,
				SizeGB:       size,
				Quantization: quant,
				ParamSize:    paramSize,
			}},
			UseCases: useCases,
		})
	}
	return mergeByName(entries)
}

// mergeByName folds entries with the same name into the first occurrence,
// appending variants in order. Duplicate tags are dropped.
func mergeByName(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	merged := make([]Entry, 0, len(entries))
	for _, e := range entries {
		i, ok := index[e.Name]
		if !ok {
			index[e.Name] = len(merged)
			e.Variants = append([]Variant(nil), e.Variants...)
			merged = append(merged, e)
			continue
		}
		for _, v := range e.Variants {
			if !hasTag(merged[i].Variants, v.Tag) {
				merged[i].Variants = append(merged[i].Variants, v)
			}
		}
	}
	return merged
}

func hasTag(variants []Variant, tag string) bool {
	for _, v := range variants {
		if v.Tag == tag {
			return true
		}
	}
	return false
}
