// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/storage"
)

// benchmarkData is the benchmark --json payload.
type benchmarkData struct {
	Estimates    []benchmark.Estimate    `json:"estimates"`
	Measurements []benchmark.Measurement `json:"measurements"`
}

func (a *App) newBenchmarkCommand() *cobra.Command {
	var (
		top     int
		measure bool
		offline bool
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Estimate and measure inference speed for top models",
		Long: `Estimate tokens per second for the top recommendations from the hardware
profile. With --real, pulled models are also run through a short prompt and
timed; each measurement is stored so "benchmark history" can show trends.`,
		Example: `  ollama-scout benchmark
  ollama-scout benchmark --top 5 --real
  ollama-scout benchmark history llama3.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if top < 1 {
				return &UsageError{Field: "top", Value: fmt.Sprint(top), Reason: "must be at least 1"}
			}
			if !cmd.Flags().Changed("offline") {
				offline = a.settings.OfflineMode
			}
			ctx := cmd.Context()
			s, err := a.scan(ctx, offline)
			if err != nil {
				return err
			}

			n := max(top, a.settings.DefaultTopN)
			recs, err := a.rank(ctx, s, catalog.All, n, defaultConcurrency)
			if err != nil {
				return err
			}
			data := benchmarkData{
				Estimates:    benchmark.EstimateTop(recs, s.hw, top),
				Measurements: []benchmark.Measurement{},
			}

			var skipped string
			if measure {
				if !s.installed {
					skipped = "Ollama is not installed; skipping real measurements."
					a.warn(skipped)
				} else {
					if !jsonOut {
						a.info("Running real benchmarks on pulled models...")
					}
					if ms := a.measurer().MeasurePulled(ctx, recs, s.local, s.hw, top); ms != nil {
						data.Measurements = ms
					}
				}
			}

			if jsonOut {
				resp := NewJSONResponse("benchmark", data)
				if skipped != "" {
					resp.Fail(skipped)
				}
				return resp.Print(a.Out)
			}

			a.println()
			RenderEstimates(a.Out, data.Estimates)
			if measure {
				if len(data.Measurements) == 0 {
					a.info("No pulled models could be measured.")
				} else {
					RenderMeasurements(a.Out, "Measured Speeds", data.Measurements, false)
					if best, ok := benchmark.Fastest(data.Measurements); ok {
						a.success("Fastest: " + best.Summary())
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", estimateCount, "Number of top models to estimate or measure")
	cmd.Flags().BoolVar(&measure, "real", false, "Also run pulled models and measure real speed")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the built-in model list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(a.newBenchmarkHistoryCommand())
	return cmd
}

func (a *App) newBenchmarkHistoryCommand() *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "history [MODEL]",
		Short: "Show stored benchmark measurements, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := ""
			if len(args) == 1 {
				model = args[0]
			}
			st := a.store()
			if st == nil {
				return &CommandError{Command: "benchmark", Action: "history", Reason: "benchmark store unavailable"}
			}
			ms, err := st.ListMeasurements(cmd.Context(), model, limit)
			if err != nil {
				return &CommandError{Command: "benchmark", Action: "history", Reason: "cannot read history", Err: err}
			}

			if jsonOut {
				return NewJSONResponse("benchmark history", ms).Print(a.Out)
			}
			if len(ms) == 0 {
				a.info("No benchmark history yet. Run: ollama-scout benchmark --real")
				return nil
			}
			RenderMeasurements(a.Out, "Benchmark History", ms, true)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", storage.DefaultHistoryLimit, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}
