// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(url string, retries int) *Fetcher {
	return NewFetcher(&FetcherConfig{
		URL:        url,
		Timeout:    2 * time.Second,
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
	}, zerolog.Nop())
}

func serveJSON(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetcher_WrappedResponse(t *testing.T) {
	srv, _ := serveJSON(t, http.StatusOK, `{"models": [
		{"name": "llama3.2:3b", "size": 2147483648, "details": {"parameter_size": "3.2B", "quantization_level": "Q4_K_M"}},
		{"name": "llama3.2:1b"},
		{"name": ""},
		{"name": "qwen2.5-coder:7b-instruct", "description": "Custom text"},
		{"name": "mystery"}
	]}`)

	entries, err := newTestFetcher(srv.URL, 0).Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	llama := entries[0]
	assert.Equal(t, "llama3.2", llama.Name)
	assert.Equal(t, "Meta's compact and efficient Llama 3.2 model", llama.Description)
	require.Len(t, llama.Variants, 2)
	assert.Equal(t, Variant{Tag: "3b", SizeGB: 2.0, Quantization: "Q4_K_M", ParamSize: "3.2B"}, llama.Variants[0])
	assert.Equal(t, Variant{Tag: "1b", SizeGB: 0.6, Quantization: "Q4_0", ParamSize: "1B"}, llama.Variants[1])

	coder := entries[1]
	assert.Equal(t, "Custom text", coder.Description)
	assert.Equal(t, []UseCase{Coding, Chat}, coder.UseCases)
	assert.Equal(t, "Q4_K_M", coder.Variants[0].Quantization)
	assert.Equal(t, 3.9, coder.Variants[0].SizeGB)

	mystery := entries[2]
	assert.Equal(t, "latest", mystery.Variants[0].Tag)
	assert.Equal(t, 4.0, mystery.Variants[0].SizeGB)
	assert.Equal(t, "?", mystery.Variants[0].ParamSize)
	assert.Equal(t, []UseCase{Chat}, mystery.UseCases)
}

func TestFetcher_BareArrayAndLimit(t *testing.T) {
	srv, _ := serveJSON(t, http.StatusOK, `[{"name": "a:1b"}, {"name": "b:2b"}, {"name": "c:3b"}]`)

	entries, err := newTestFetcher(srv.URL, 0).Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
}

func TestFetcher_EmptyCatalog(t *testing.T) {
	srv, _ := serveJSON(t, http.StatusOK, `{"models": []}`)

	_, err := newTestFetcher(srv.URL, 0).Fetch(context.Background(), 10)
	assert.True(t, errors.Is(err, ErrEmptyCatalog))
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	srv, hits := serveJSON(t, http.StatusServiceUnavailable, "down")

	_, err := newTestFetcher(srv.URL, 2).Fetch(context.Background(), 10)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
	assert.Contains(t, err.Error(), "--offline")
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}

func TestFetcher_NoRetryOnClientError(t *testing.T) {
	srv, hits := serveJSON(t, http.StatusNotFound, "nope")

	_, err := newTestFetcher(srv.URL, 2).Fetch(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestFetcher_MalformedBody(t *testing.T) {
	srv, _ := serveJSON(t, http.StatusOK, `{"models": "nope"`)

	_, err := newTestFetcher(srv.URL, 0).Fetch(context.Background(), 10)
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestFetcher_Defaults(t *testing.T) {
	f := NewFetcher(&FetcherConfig{}, zerolog.Nop())
	assert.Equal(t, DefaultURL, f.URL())
	assert.Equal(t, 15*time.Second, f.config.Timeout)
}
