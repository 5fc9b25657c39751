// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/config"
	"github.com/sandy-sp/ollama-scout/internal/detect"
	"github.com/sandy-sp/ollama-scout/internal/export"
	"github.com/sandy-sp/ollama-scout/internal/ollama"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

const (
	// estimateCount is how many top recommendations get speed figures.
	estimateCount = 3
	// pulledPreview is how many pulled names the info line lists.
	pulledPreview = 5
	// defaultConcurrency is the ranking worker count.
	defaultConcurrency = 4
)

// recommendOptions are the recommend flags. Unset flags fall back to the
// effective settings.
type recommendOptions struct {
	useCase      string
	top          int
	flat         bool
	offline      bool
	benchmark    bool
	export       bool
	output       string
	json         bool
	noPullPrompt bool
	concurrency  int
	watch        bool
}

func bindRecommendFlags(cmd *cobra.Command, o *recommendOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.useCase, "use-case", "u", "", "Filter by use case: all, coding, reasoning, chat (default from config)")
	f.IntVarP(&o.top, "top", "n", 0, "Number of recommendations to show (default from config)")
	f.BoolVar(&o.flat, "flat", false, "Show a flat list instead of grouping by use case")
	f.BoolVar(&o.offline, "offline", false, "Skip the live catalog and use the built-in model list")
	f.BoolVar(&o.benchmark, "benchmark", false, "Show speed estimates and measure pulled models")
	f.BoolVar(&o.export, "export", false, "Save a Markdown report without prompting")
	f.StringVarP(&o.output, "output", "o", "", "Report path (implies --export; .json writes JSON)")
	f.BoolVar(&o.json, "json", false, "Print hardware and recommendations as JSON")
	f.BoolVar(&o.noPullPrompt, "no-pull-prompt", false, "Skip the interactive pull prompt")
	f.IntVar(&o.concurrency, "concurrency", defaultConcurrency, "Ranking workers (1 ranks sequentially)")
	f.BoolVar(&o.watch, "watch", false, "Re-run whenever the config file changes")
}

func (a *App) newRecommendCommand() *cobra.Command {
	opts := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend models that fit this machine",
		Long: `Scan the hardware, load the model catalog and rank every model by how well
its best variant fits. Results are grouped by use case unless --flat or a
specific --use-case is given.`,
		Example: `  ollama-scout recommend
  ollama-scout recommend --use-case coding --top 5
  ollama-scout recommend --offline --flat --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRecommend(cmd, opts)
		},
	}
	bindRecommendFlags(cmd, opts)
	return cmd
}

// resolved merges flags with the effective settings; flags win when set.
type resolved struct {
	recommendOptions
	uc catalog.UseCase
}

func (a *App) resolveRecommend(cmd *cobra.Command, o *recommendOptions) (*resolved, error) {
	r := &resolved{recommendOptions: *o}
	f := cmd.Flags()
	s := a.settings

	if !f.Changed("use-case") {
		r.useCase = s.DefaultUseCase
	}
	if !f.Changed("top") {
		r.top = s.DefaultTopN
	}
	if !f.Changed("offline") {
		r.offline = s.OfflineMode
	}
	if !f.Changed("benchmark") {
		r.benchmark = s.ShowBenchmark
	}
	if !f.Changed("export") {
		r.export = s.AutoExport
	}
	if r.output != "" {
		r.export = true
	}

	uc, err := catalog.ParseUseCase(r.useCase)
	if err != nil {
		return nil, &UsageError{Field: "use-case", Value: r.useCase, Reason: "must be one of all, coding, reasoning, chat"}
	}
	r.uc = uc
	if r.top < 1 {
		return nil, &UsageError{Field: "top", Value: fmt.Sprint(r.top), Reason: "must be at least 1", Example: "--top 10"}
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	return r, nil
}

// =============================================================================
// SCAN
// =============================================================================

// scanResult is everything the ranking needs from the machine and network.
type scanResult struct {
	hw        *detect.HardwareProfile
	catalog   *catalog.LoadResult
	pulled    []string
	local     []string
	installed bool
	version   string
}

// scan probes hardware, loads the catalog and lists pulled models
// concurrently.
func (a *App) scan(ctx context.Context, offline bool) (*scanResult, error) {
	res := &scanResult{}
	runner := a.runner()
	loader := a.loader()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.hw = a.hardware(gctx)
		return nil
	})
	g.Go(func() error {
		lr, err := loader.Load(gctx, catalog.LoadOptions{Offline: offline})
		if err != nil {
			return fmt.Errorf("load model catalog: %w", err)
		}
		res.catalog = lr
		return nil
	})
	g.Go(func() error {
		res.installed = runner.Installed()
		if res.installed {
			v, err := runner.Version(gctx)
			if err != nil {
				a.log.Debug().Err(err).Msg("ollama version unavailable")
			}
			res.version = v
		}
		res.local = runner.ListPulledTags(gctx)
		res.pulled = ollama.BaseNames(res.local)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// printScan writes the detection and catalog status lines.
func (a *App) printScan(s *scanResult, offline bool) {
	if s.installed {
		v := s.version
		if v == "" {
			v = "version unknown"
		}
		a.info("Ollama detected: " + DimStyle.Render(v))
	} else {
		a.println(PanelStyle.BorderForeground(WarningStyle.GetForeground()).Render(
			WarningStyle.Render("Ollama is not installed.") + "\n" +
				"Install it from https://ollama.com/download to pull and run models.\n" +
				DimStyle.Render("Recommendations below are still based on your hardware.")))
	}
	a.println()

	RenderHardware(a.Out, s.hw)
	if !s.hw.HasGPU() && !s.hw.UnifiedMemory {
		RenderNoGPUHints(a.Out, detect.DiagnoseNoGPU())
	}

	lr := s.catalog
	n := len(lr.Entries)
	switch lr.Source {
	case catalog.SourceLive:
		a.info(fmt.Sprintf("Loaded %d models from the Ollama library.", n))
	case catalog.SourceCache:
		a.info(fmt.Sprintf("Loaded %d models from cache (updated %s ago).", n, a.Now().Sub(lr.FetchedAt).Round(time.Minute)))
	case catalog.SourceStaleCache:
		a.warn(fmt.Sprintf("Live fetch failed; using %d cached models from %s.", n, lr.FetchedAt.Local().Format(time.DateTime)))
	default:
		if offline {
			a.info(fmt.Sprintf("Offline mode: using %d built-in models.", n))
		} else {
			a.warn(fmt.Sprintf("Live fetch failed; using %d built-in models.", n))
		}
	}
	if lr.FetchErr != nil {
		a.log.Debug().Err(lr.FetchErr).Msg("catalog fetch error")
	}

	if len(s.pulled) > 0 {
		names := s.pulled
		suffix := ""
		if len(names) > pulledPreview {
			names, suffix = names[:pulledPreview], "..."
		}
		a.info(fmt.Sprintf("Detected %s already-pulled model(s): %s%s",
			HighlightStyle.Render(fmt.Sprint(len(s.pulled))), strings.Join(names, ", "), suffix))
	}
	a.println()
}

// rank orders the catalog for the scanned machine.
func (a *App) rank(ctx context.Context, s *scanResult, uc catalog.UseCase, top, workers int) ([]recommend.Recommendation, error) {
	opts := recommend.Options{UseCase: uc, Pulled: recommend.PulledSet(s.pulled), TopN: top}
	if workers <= 1 {
		return recommend.Rank(s.catalog.Entries, s.hw, opts), nil
	}
	return recommend.RankConcurrent(ctx, s.catalog.Entries, s.hw, opts, workers)
}

// =============================================================================
// RUN
// =============================================================================

func (a *App) runRecommend(cmd *cobra.Command, o *recommendOptions) error {
	if err := a.recommendOnce(cmd, o, !o.watch); err != nil {
		return err
	}
	if !o.watch {
		return nil
	}

	a.info("Watching " + a.cfgPath + " for changes (Ctrl+C to stop)")
	return config.Watch(cmd.Context(), a.cfgPath, func() {
		a.println()
		a.info("Config changed, re-running.")
		if err := a.reload(); err != nil {
			DisplayError(a.Err, err, false)
			return
		}
		if err := a.recommendOnce(cmd, o, false); err != nil {
			DisplayError(a.Err, err, false)
		}
	})
}

// recommendOnce runs one full scan-rank-display pass. interactive enables
// the export and pull prompts.
func (a *App) recommendOnce(cmd *cobra.Command, o *recommendOptions, interactive bool) error {
	ctx := cmd.Context()
	r, err := a.resolveRecommend(cmd, o)
	if err != nil {
		return err
	}
	human := !r.json

	if human {
		RenderBanner(a.Out, a.Version)
	}
	s, err := a.scan(ctx, r.offline)
	if err != nil {
		return err
	}
	if human {
		a.printScan(s, r.offline)
	}

	recs, err := a.rank(ctx, s, r.uc, r.top, r.concurrency)
	if err != nil {
		return err
	}

	report := export.NewReport(s.hw, a.Now())
	report.CatalogSource = string(s.catalog.Source)
	flat := r.flat || r.uc != catalog.All
	if flat {
		report.AddFlat(flatTitle(r.uc), recs)
	} else {
		report.AddGroups(recommend.GroupByUseCase(recs))
	}

	if r.benchmark && len(recs) > 0 {
		report.Estimates = benchmark.EstimateTop(recs, s.hw, estimateCount)
		if s.installed && len(s.pulled) > 0 {
			if human {
				a.info("Running real benchmarks on pulled models...")
			}
			report.Measurements = a.measurer().MeasurePulled(ctx, recs, s.local, s.hw, estimateCount)
		}
	}

	if !human {
		return export.Write(a.Out, report, export.NewJSONExporter())
	}

	if len(recs) == 0 {
		a.println(ErrorStyle.Render("No compatible models found for your hardware profile."))
		return nil
	}

	if flat {
		RenderFlat(a.Out, flatTitle(r.uc), recs)
	} else {
		RenderGrouped(a.Out, recommend.GroupByUseCase(recs))
	}
	RenderLegend(a.Out)
	a.println()

	if r.benchmark {
		RenderEstimates(a.Out, report.Estimates)
		switch {
		case len(report.Measurements) > 0:
			RenderMeasurements(a.Out, "Measured Speeds", report.Measurements, false)
		case !s.installed || len(s.pulled) == 0:
			a.println(PanelStyle.Render("No models are currently pulled.\nPull a model with " +
				InfoStyle.Render("ollama pull MODEL") + " or use the pull prompt below."))
		default:
			a.info("No benchmark results available.")
		}
	}

	shouldExport := r.export
	if !shouldExport && interactive {
		shouldExport = a.promptExport()
	}
	if shouldExport {
		path, err := a.exportReport(report, r.output)
		if err != nil {
			a.warn("Export failed: " + err.Error())
		} else {
			a.success("Report saved to: " + path)
		}
	}

	if interactive && !r.noPullPrompt && !r.export && s.installed {
		if choice := a.promptPull(recs); choice != "" {
			a.pull(ctx, choice)
		}
	}

	RenderFooter(a.Out)
	return nil
}

func flatTitle(uc catalog.UseCase) string {
	if uc == catalog.All {
		return "Recommended Models"
	}
	return uc.Title() + " Models"
}

// exportReport writes the report to output, or a timestamped file in the
// configured export directory. A .json output path selects JSON.
func (a *App) exportReport(report *export.Report, output string) (string, error) {
	opts := &export.Options{Path: output, OutputDir: a.settings.ExportDir}
	var exporter export.Exporter = export.NewMarkdownExporter()
	if strings.EqualFold(filepath.Ext(output), ".json") {
		exporter = export.NewJSONExporter()
	}
	return export.ExportToFile(report, exporter, opts)
}

// pull runs "ollama pull" for one model, reporting but not returning
// failures. It returns whether the pull succeeded.
func (a *App) pull(ctx context.Context, model string) bool {
	a.info("Pulling " + SectionStyle.Render(model) + "...")
	if err := a.runner().Pull(ctx, model, a.Out, a.Err); err != nil {
		a.warn("Pull failed: " + err.Error())
		return false
	}
	a.success("Successfully pulled " + model)
	return true
}
