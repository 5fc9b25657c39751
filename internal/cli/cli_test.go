// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/detect"
	"github.com/sandy-sp/ollama-scout/internal/ollama"
)

func TestMain(m *testing.M) {
	ForceColorsEnabled(false)
	os.Exit(m.Run())
}

// =============================================================================
// FAKES
// =============================================================================

type fakeRunner struct {
	mu        sync.Mutex
	installed bool
	pulled    []string
	pullErr   error
	pulls     []string
	runs      []string
	starts    int
	startErr  error
}

func (r *fakeRunner) Installed() bool { return r.installed }

func (r *fakeRunner) Version(context.Context) (string, error) {
	if !r.installed {
		return "", errors.New("not installed")
	}
	return "ollama version is 0.5.7", nil
}

func (r *fakeRunner) ListPulled(context.Context) []string { return ollama.BaseNames(r.pulled) }

func (r *fakeRunner) ListPulledTags(context.Context) []string { return r.pulled }

func (r *fakeRunner) Pull(_ context.Context, model string, _, _ io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulls = append(r.pulls, model)
	return r.pullErr
}

func (r *fakeRunner) Run(_ context.Context, model, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, model)
	return strings.Repeat("word ", 150), nil
}

func (r *fakeRunner) StartServer(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	return r.startErr
}

type fakeServer struct{ err error }

func (s fakeServer) CheckRunning(context.Context) error { return s.err }

type fakeLoader struct {
	mu     sync.Mutex
	result *catalog.LoadResult
	err    error
	calls  []catalog.LoadOptions
}

func (l *fakeLoader) Load(_ context.Context, opts catalog.LoadOptions) (*catalog.LoadResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, opts)
	if l.err != nil {
		return nil, l.err
	}
	return l.result, nil
}

type fakeStore struct {
	mu    sync.Mutex
	snap  *catalog.Snapshot
	saved []benchmark.Measurement
}

func (s *fakeStore) LoadCatalog(context.Context) (*catalog.Snapshot, error) { return s.snap, nil }

func (s *fakeStore) SaveCatalog(_ context.Context, snap *catalog.Snapshot) error {
	s.snap = snap
	return nil
}

func (s *fakeStore) SaveMeasurement(_ context.Context, m *benchmark.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *m)
	return nil
}

func (s *fakeStore) ListMeasurements(_ context.Context, model string, limit int) ([]benchmark.Measurement, error) {
	var out []benchmark.Measurement
	for i := len(s.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if model == "" || s.saved[i].Model == model {
			out = append(out, s.saved[i])
		}
	}
	return out, nil
}

func (s *fakeStore) Close() error { return nil }

// =============================================================================
// HARNESS
// =============================================================================

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testCatalog() []catalog.Entry {
	return []catalog.Entry{
		{
			Name:        "llama3.2",
			Description: "Meta's small multilingual models",
			UseCases:    []catalog.UseCase{catalog.Chat},
			Variants: []catalog.Variant{
				{Tag: "1b", SizeGB: 1.3, Quantization: "Q8_0", ParamSize: "1B"},
				{Tag: "3b", SizeGB: 2.0, Quantization: "Q4_K_M", ParamSize: "3B"},
			},
		},
		{
			Name:        "qwen2.5-coder",
			Description: "Code-specific Qwen models",
			UseCases:    []catalog.UseCase{catalog.Coding},
			Variants: []catalog.Variant{
				{Tag: "7b", SizeGB: 4.7, Quantization: "Q4_K_M", ParamSize: "7B"},
				{Tag: "32b", SizeGB: 20, Quantization: "Q4_K_M", ParamSize: "32B"},
			},
		},
		{
			Name:        "deepseek-r1",
			Description: "Reasoning models",
			UseCases:    []catalog.UseCase{catalog.Reasoning},
			Variants: []catalog.Variant{
				{Tag: "671b", SizeGB: 404, Quantization: "Q4_K_M", ParamSize: "671B"},
			},
		},
	}
}

func gpuProfile() *detect.HardwareProfile {
	return &detect.HardwareProfile{
		OS:         "Linux",
		CPUName:    "AMD Ryzen 7 5800X",
		CPUCores:   8,
		CPUThreads: 16,
		RAMGB:      32,
		GPUs:       []detect.GPU{{Name: "NVIDIA GeForce RTX 3060", VRAMMB: 12288}},
	}
}

type harness struct {
	t      *testing.T
	hw     *detect.HardwareProfile
	runner *fakeRunner
	server fakeServer
	loader *fakeLoader
	store  *fakeStore
	dial   error
	disk   float64

	confirms []string
	selects  []string
	inputs   []string
	confirm  bool
	choice   string

	// answers overrides confirm and choice per prompt title. Confirm
	// answers are "y" or "n".
	answers map[string]string

	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("OLLAMA_SCOUT_HOME", t.TempDir())
	for _, k := range []string{"OLLAMA_HOST", "OLLAMA_SCOUT_USE_CASE", "OLLAMA_SCOUT_TOP_N", "OLLAMA_SCOUT_OFFLINE", "OLLAMA_SCOUT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	h := &harness{
		t:      t,
		hw:     gpuProfile(),
		runner: &fakeRunner{installed: true, pulled: []string{"llama3.2:1b"}},
		loader: &fakeLoader{result: &catalog.LoadResult{Entries: testCatalog(), Source: catalog.SourceLive, FetchedAt: testNow}},
		store:  &fakeStore{snap: &catalog.Snapshot{Entries: testCatalog(), FetchedAt: testNow.Add(-2 * time.Hour)}},
		disk:   250,
	}

	origConfirm, origSelect, origInput := promptConfirm, promptSelect, promptInput
	promptConfirm = func(_ io.Reader, _ io.Writer, q string) bool {
		h.confirms = append(h.confirms, q)
		if v, ok := h.answers[q]; ok {
			return v == "y"
		}
		return h.confirm
	}
	promptSelect = func(_ io.Reader, _ io.Writer, title string, _ []huh.Option[string]) string {
		h.selects = append(h.selects, title)
		if v, ok := h.answers[title]; ok {
			return v
		}
		return h.choice
	}
	promptInput = func(_ io.Reader, _ io.Writer, title, _ string) string {
		h.inputs = append(h.inputs, title)
		return h.answers[title]
	}
	t.Cleanup(func() {
		promptConfirm, promptSelect, promptInput = origConfirm, origSelect, origInput
	})
	return h
}

func (h *harness) app() *App {
	h.out = &bytes.Buffer{}
	h.err = &bytes.Buffer{}
	a := NewApp("1.2.3")
	a.In = strings.NewReader("")
	a.Out = h.out
	a.Err = h.err
	a.Hardware = func(context.Context) *detect.HardwareProfile { return h.hw }
	a.Runner = h.runner
	a.Server = h.server
	a.Loader = h.loader
	a.Store = h.store
	a.DiskFree = func(string) (float64, error) { return h.disk, nil }
	a.Dial = func(context.Context) error { return h.dial }
	a.Now = func() time.Time { return testNow }
	return a
}

// run executes one command line on a fresh App and returns stdout.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := h.app().NewRootCommand()
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return h.out.String(), err
}

func decodeJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m), s)
	return m
}

// =============================================================================
// RECOMMEND
// =============================================================================

func TestRecommend_JSON(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("recommend", "--json", "--offline")
	require.NoError(t, err)

	m := decodeJSON(t, out)
	hw := m["hardware"].(map[string]any)
	assert.Equal(t, 32.0, hw["ram_gb"])
	sections := m["sections"].([]any)
	assert.NotEmpty(t, sections)
	assert.Equal(t, "live", m["catalog_source"])

	require.Len(t, h.loader.calls, 1)
	assert.True(t, h.loader.calls[0].Offline)
	assert.Empty(t, h.confirms, "json mode never prompts")
	assert.Empty(t, h.selects)
}

func TestRecommend_GroupedByDefault(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("--no-pull-prompt")
	require.NoError(t, err)

	assert.Contains(t, out, "Coding Models")
	assert.Contains(t, out, "Chat Models")
	assert.Contains(t, out, "qwen2.5-coder")
	assert.NotContains(t, out, "deepseek-r1", "infeasible models are dropped")
	assert.NotContains(t, out, "Reasoning Models")
	assert.Contains(t, out, "NVIDIA GeForce RTX 3060")
	assert.Contains(t, out, "Loaded 3 models from the Ollama library.")

	assert.Len(t, h.confirms, 1, "export prompt runs once")
	assert.Empty(t, h.selects, "--no-pull-prompt skips the pull prompt")
}

func TestRecommend_UseCaseFilter(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("recommend", "-u", "coding", "--no-pull-prompt")
	require.NoError(t, err)

	assert.Contains(t, out, "Coding Models")
	assert.Contains(t, out, "qwen2.5-coder")
	assert.NotContains(t, out, "Chat Models")
	assert.NotContains(t, out, "Meta's small")
}

func TestRecommend_InvalidUseCase(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("recommend", "--use-case", "gaming")
	require.Error(t, err)

	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, "use-case", usage.Field)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRecommend_TopFromConfig(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("config", "set", "default_top_n", "1")
	require.NoError(t, err)

	out, err := h.run("recommend", "--json", "--flat")
	require.NoError(t, err)
	sections := decodeJSON(t, out)["sections"].([]any)
	require.Len(t, sections, 1)
	recs := sections[0].(map[string]any)["recommendations"].([]any)
	assert.Len(t, recs, 1)

	out, err = h.run("recommend", "--json", "--flat", "--top", "2")
	require.NoError(t, err)
	sections = decodeJSON(t, out)["sections"].([]any)
	recs = sections[0].(map[string]any)["recommendations"].([]any)
	assert.Len(t, recs, 2, "flag overrides config")
}

func TestRecommend_PullPrompt(t *testing.T) {
	h := newHarness(t)
	h.choice = "qwen2.5-coder:7b"

	out, err := h.run("recommend")
	require.NoError(t, err)

	assert.Len(t, h.selects, 1)
	assert.Equal(t, []string{"qwen2.5-coder:7b"}, h.runner.pulls)
	assert.Contains(t, out, "Successfully pulled qwen2.5-coder:7b")
}

func TestRecommend_SkipPullReportsNothing(t *testing.T) {
	h := newHarness(t)
	h.choice = ""

	_, err := h.run("recommend")
	require.NoError(t, err)
	assert.Len(t, h.selects, 1)
	assert.Empty(t, h.runner.pulls)
}

func TestRecommend_OllamaNotInstalled(t *testing.T) {
	h := newHarness(t)
	h.runner.installed = false
	h.runner.pulled = nil

	out, err := h.run("recommend")
	require.NoError(t, err)

	assert.Contains(t, out, "Ollama is not installed.")
	assert.Contains(t, out, "qwen2.5-coder", "recommendations still render")
	assert.Empty(t, h.selects, "no pull prompt without ollama")
}

func TestRecommend_ExportToOutput(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "report.md")

	out, err := h.run("recommend", "--output", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Report saved to:")
	assert.Empty(t, h.confirms, "--output skips the export prompt")
	assert.Empty(t, h.selects, "exporting skips the pull prompt")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "qwen2.5-coder")
}

func TestRecommend_ExportJSONByExtension(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "report.json")

	_, err := h.run("recommend", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	m := decodeJSON(t, string(data))
	assert.Contains(t, m, "sections")
}

func TestRecommend_NoCompatibleModels(t *testing.T) {
	h := newHarness(t)
	h.hw = &detect.HardwareProfile{OS: "Linux", CPUName: "tiny", CPUCores: 1, CPUThreads: 1, RAMGB: 1}

	out, err := h.run("recommend", "--no-pull-prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "No compatible models found for your hardware profile.")
	assert.Empty(t, h.confirms)
}

func TestRecommend_BenchmarkMeasuresPulled(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("recommend", "--benchmark", "--no-pull-prompt", "--export=false")
	require.NoError(t, err)

	assert.Contains(t, out, "llama3.2")
	assert.Equal(t, []string{"llama3.2:1b"}, h.runner.runs)
	assert.Len(t, h.store.saved, 1, "measurements are recorded")
}

func TestRecommend_BenchmarkRunsOnlyLocalTags(t *testing.T) {
	h := newHarness(t)
	h.runner.pulled = []string{"llama3.2:3b"}

	_, err := h.run("recommend", "--benchmark", "--no-pull-prompt", "--export=false")
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:3b"}, h.runner.runs, "best fit is 1b but only 3b is on disk")
}

func TestRecommend_CatalogError(t *testing.T) {
	h := newHarness(t)
	h.loader.err = catalog.ErrEmptyCatalog

	_, err := h.run("recommend", "--json")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
}

// =============================================================================
// MODEL / COMPARE
// =============================================================================

func TestModel_Detail(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("model", "QWEN2.5", "--explain")
	require.NoError(t, err)

	assert.Contains(t, out, "qwen2.5-coder")
	assert.Contains(t, out, "Available Variants")
	assert.Contains(t, out, "ollama pull qwen2.5-coder:7b")
	assert.Contains(t, out, "vram-fit")
}

func TestModel_NoCompatibleVariant(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("model", "deepseek-r1")
	require.NoError(t, err)
	assert.Contains(t, out, "No compatible variants found for your hardware.")
}

func TestModel_NotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("model", "mixtral")
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Hint, "deepseek-r1, llama3.2, qwen2.5-coder")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestCompare_BothFound(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("compare", "llama3.2", "qwen2.5-coder")
	require.NoError(t, err)

	assert.Contains(t, out, "Model Comparison")
	assert.Contains(t, out, "Best Tag")
	assert.Contains(t, out, "Pulled")
	assert.Contains(t, out, "Available")
}

func TestCompare_OneMissing(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("compare", "llama3.2", "mixtral")
	require.NoError(t, err)

	assert.Contains(t, out, "not found")
	assert.Contains(t, h.err.String(), "Model 'mixtral' not found.")
}

func TestCompare_BothMissing(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("compare", "mixtral", "phi3")
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestCompare_RequiresTwoArgs(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("compare", "llama3.2")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// BENCHMARK
// =============================================================================

func TestBenchmark_JSONEstimates(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("benchmark", "--json", "--top", "2")
	require.NoError(t, err)

	m := decodeJSON(t, out)
	assert.Equal(t, true, m["success"])
	data := m["data"].(map[string]any)
	assert.Len(t, data["estimates"].([]any), 2)
	assert.Empty(t, data["measurements"].([]any))
	assert.Empty(t, h.runner.runs)
}

func TestBenchmark_RealAndHistory(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("benchmark", "--real")
	require.NoError(t, err)
	assert.Contains(t, out, "Fastest:")
	require.Len(t, h.store.saved, 1)

	out, err = h.run("benchmark", "history", "--json")
	require.NoError(t, err)
	data := decodeJSON(t, out)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "llama3.2:1b", data[0].(map[string]any)["model"])
}

func TestBenchmark_HistoryEmpty(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("benchmark", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No benchmark history yet.")
}

func TestBenchmark_RealWithoutOllama(t *testing.T) {
	h := newHarness(t)
	h.runner.installed = false

	_, err := h.run("benchmark", "--real")
	require.NoError(t, err)
	assert.Contains(t, h.err.String(), "Ollama is not installed")
	assert.Empty(t, h.runner.runs)

	out, err := h.run("benchmark", "--real", "--json")
	require.NoError(t, err)
	m := decodeJSON(t, out)
	assert.Equal(t, false, m["success"])
	assert.Contains(t, m["error"], "skipping real measurements")
	assert.NotEmpty(t, m["data"].(map[string]any)["estimates"])
}

// =============================================================================
// PULL / UPDATE-MODELS / VERSION
// =============================================================================

func TestPull(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("pull", "llama3.2:1b")
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:1b"}, h.runner.pulls)
	assert.Contains(t, out, "Successfully pulled llama3.2:1b")

	h.runner.pullErr = errors.New("exit status 1")
	_, err = h.run("pull", "nope:latest")
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "pull", cmdErr.Command)
}

func TestUpdateModels(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("update-models")
	require.NoError(t, err)
	assert.Contains(t, out, "Model list updated. 3 models cached.")
	require.Len(t, h.loader.calls, 1)
	assert.True(t, h.loader.calls[0].ForceRefresh)
}

func TestUpdateModels_FetchFailure(t *testing.T) {
	h := newHarness(t)
	fetchErr := &catalog.FetchError{URL: "https://ollama.com/api/tags", Cause: errors.New("connection refused")}
	h.loader.result = &catalog.LoadResult{Entries: catalog.Fallback(), Source: catalog.SourceFallback, FetchErr: fetchErr}

	_, err := h.run("update-models")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "ollama-scout 1.2.3")
}
