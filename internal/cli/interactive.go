// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// interactive.go - Guided step-by-step session.
//
// Steps:
//   1. Welcome and ollama detection
//   2. Catalog source (live library or built-in list)
//   3. Hardware scan and pulled models
//   4. Use case and result count
//   5. Recommendations
//   6. Optional compare, benchmark, export and pull

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/export"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// Prompt titles, in the order the session asks them.
const (
	askCatalog   = "Where should the model list come from?"
	askUseCase   = "What are you mainly using this for?"
	askTopN      = "How many recommendations would you like?"
	askCompare   = "Compare two models?"
	askFirst     = "First model name"
	askSecond    = "Second model name"
	askBenchmark = "Benchmark pulled models?"
	askExport    = "Save these results as a Markdown report?"
	askExportTo  = "Save to (leave blank for the export directory)"
)

// defaultSessionTopN is used when the count question is skipped.
const defaultSessionTopN = 10

var sessionTopN = []struct {
	n     int
	label string
}{
	{5, "Quick overview"},
	{10, "Standard"},
	{15, "More options"},
	{20, "Extended list"},
}

func useCaseOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("All categories", string(catalog.All)),
		huh.NewOption("Coding - code generation, completion and debugging", string(catalog.Coding)),
		huh.NewOption("Reasoning - complex reasoning, math and analysis", string(catalog.Reasoning)),
		huh.NewOption("Chat - conversation and general use", string(catalog.Chat)),
	}
}

func topNOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(sessionTopN))
	for _, o := range sessionTopN {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%2d  %s", o.n, o.label), strconv.Itoa(o.n)))
	}
	return opts
}

func catalogOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Latest Ollama library (requires internet)", "live"),
		huh.NewOption("Built-in model list", "offline"),
	}
}

// =============================================================================
// SESSION
// =============================================================================

// runInteractive walks through scan, ranking and the follow-up actions one
// question at a time. Unanswered questions take their defaults.
func (a *App) runInteractive(cmd *cobra.Command) error {
	ctx := cmd.Context()

	RenderBanner(a.Out, a.Version)
	a.println(SectionStyle.Render("Welcome!") + " Let's find the best LLMs for your hardware.")
	a.println(DimStyle.Render("We'll scan your system, filter compatible models and guide you through the rest."))
	a.println()
	if !CanPrompt(a.In, a.Out) {
		a.warn("Not a terminal; every question takes its default answer.")
	}

	offline := a.settings.OfflineMode
	if !offline {
		offline = promptSelect(a.In, a.Out, askCatalog, catalogOptions()) == "offline"
	}

	s, err := a.scan(ctx, offline)
	if err != nil {
		return err
	}
	a.printScan(s, offline)
	a.println(RenderSeparatorAdaptive())

	uc, err := a.askUseCase()
	if err != nil {
		return err
	}
	top := a.askTopN()

	recs, err := a.rank(ctx, s, uc, top, defaultConcurrency)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.println(ErrorStyle.Render("No compatible models found for your hardware."))
		RenderFooter(a.Out)
		return nil
	}

	label := "all categories"
	if uc != catalog.All {
		label = uc.Title()
	}
	a.println()
	a.println(DimStyle.Render(fmt.Sprintf("Found %d compatible model(s) for %s.", len(recs), label)))
	a.println()
	if uc == catalog.All {
		RenderGrouped(a.Out, recommend.GroupByUseCase(recs))
	} else {
		RenderFlat(a.Out, flatTitle(uc), recs)
	}
	RenderLegend(a.Out)
	a.println(RenderSeparatorAdaptive())

	a.sessionCompare(s)
	report := a.sessionBenchmark(ctx, s, recs)
	a.sessionExport(report, recs, uc)

	var pulled string
	if s.installed {
		if choice := a.promptPull(recs); choice != "" && a.pull(ctx, choice) {
			pulled = choice
		}
	} else {
		a.println(DimStyle.Render("Skipping pull: Ollama is not installed."))
	}

	a.println()
	if pulled != "" {
		a.println(SuccessStyle.Render("All done!") + " Run your model:")
		a.println("  " + InfoStyle.Render("ollama run "+pulled))
	} else {
		a.println(DimStyle.Render("Tip: run ollama-scout --help to see all available options."))
	}
	RenderFooter(a.Out)
	return nil
}

func (a *App) askUseCase() (catalog.UseCase, error) {
	choice := promptSelect(a.In, a.Out, askUseCase, useCaseOptions())
	if choice == "" {
		choice = a.settings.DefaultUseCase
	}
	uc, err := catalog.ParseUseCase(choice)
	if err != nil {
		return "", &UsageError{Field: "use-case", Value: choice, Reason: "must be one of all, coding, reasoning, chat"}
	}
	return uc, nil
}

func (a *App) askTopN() int {
	n, err := strconv.Atoi(promptSelect(a.In, a.Out, askTopN, topNOptions()))
	if err != nil || n < 1 {
		return defaultSessionTopN
	}
	return n
}

func (a *App) sessionCompare(s *scanResult) {
	if !promptConfirm(a.In, a.Out, askCompare) {
		return
	}
	left := promptInput(a.In, a.Out, askFirst, "llama3.2")
	right := promptInput(a.In, a.Out, askSecond, "mistral")
	if left == "" || right == "" {
		a.warn("Both model names are required.")
		return
	}
	a.compare(s, left, right)
}

// sessionBenchmark optionally measures pulled models and returns the report
// the export step saves.
func (a *App) sessionBenchmark(ctx context.Context, s *scanResult, recs []recommend.Recommendation) *export.Report {
	report := export.NewReport(s.hw, a.Now())
	report.CatalogSource = string(s.catalog.Source)

	if !promptConfirm(a.In, a.Out, askBenchmark) {
		return report
	}
	if !s.installed || len(s.local) == 0 {
		a.println(DimStyle.Render("No models are currently pulled. Pull a model first to run real benchmarks."))
		return report
	}

	a.info("Running real benchmarks on pulled models...")
	report.Estimates = benchmark.EstimateTop(recs, s.hw, estimateCount)
	report.Measurements = a.measurer().MeasurePulled(ctx, recs, s.local, s.hw, estimateCount)
	if len(report.Measurements) == 0 {
		a.println(DimStyle.Render("Could not measure speeds for pulled models."))
		return report
	}
	RenderMeasurements(a.Out, "Measured Speeds", report.Measurements, false)
	return report
}

func (a *App) sessionExport(report *export.Report, recs []recommend.Recommendation, uc catalog.UseCase) {
	if !promptConfirm(a.In, a.Out, askExport) {
		return
	}
	if uc == catalog.All {
		report.AddGroups(recommend.GroupByUseCase(recs))
	} else {
		report.AddFlat(flatTitle(uc), recs)
	}

	path, err := a.exportReport(report, promptInput(a.In, a.Out, askExportTo, "~/reports/scout.md"))
	if err != nil {
		a.warn("Export failed: " + err.Error())
		return
	}
	a.success("Report saved to: " + path)
}
