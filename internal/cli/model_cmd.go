// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// availableHint lists catalog names for a not-found error.
func availableHint(entries []catalog.Entry) string {
	seen := make(map[string]bool, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return "Available models: " + strings.Join(names, ", ")
}

// =============================================================================
// MODEL
// =============================================================================

func (a *App) newModelCommand() *cobra.Command {
	var (
		explain bool
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "model NAME",
		Short: "Show every variant of one model and how it fits",
		Long: `Score each variant of a model against this machine and show the best fit
with its pull command. NAME matches case-insensitively, exactly first and then
by prefix.`,
		Example: `  ollama-scout model deepseek-coder
  ollama-scout model llama3 --explain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("offline") {
				offline = a.settings.OfflineMode
			}
			s, err := a.scan(cmd.Context(), offline)
			if err != nil {
				return err
			}
			e, ok := catalog.Find(s.catalog.Entries, args[0])
			if !ok {
				return &NotFoundError{Resource: "model", ID: args[0], Hint: availableHint(s.catalog.Entries)}
			}
			a.println()
			RenderModelDetail(a.Out, e, s.hw, recommend.PulledSet(s.pulled)[e.Name], explain)
			RenderFooter(a.Out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "Show which fit rule decided each verdict")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the built-in model list")
	return cmd
}

// =============================================================================
// COMPARE
// =============================================================================

func (a *App) newCompareCommand() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:     "compare MODEL1 MODEL2",
		Short:   "Compare the best-fitting variants of two models",
		Example: `  ollama-scout compare llama3.2 mistral`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("offline") {
				offline = a.settings.OfflineMode
			}
			s, err := a.scan(cmd.Context(), offline)
			if err != nil {
				return err
			}
			if missing := a.compare(s, args[0], args[1]); missing == len(args) {
				return &NotFoundError{Resource: "model", ID: strings.Join(args, ", "), Hint: availableHint(s.catalog.Entries)}
			}
			RenderFooter(a.Out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the built-in model list")
	return cmd
}

// compare renders two catalog models side by side, warning about names
// that are not in the catalog. Nothing is rendered when both are unknown.
// It returns how many names were missing.
func (a *App) compare(s *scanResult, left, right string) int {
	pulled := recommend.PulledSet(s.pulled)
	names := [2]string{left, right}

	var sides [2]*comparison
	missing := 0
	for i, name := range names {
		e, ok := catalog.Find(s.catalog.Entries, name)
		if !ok {
			missing++
			a.warn("Model '" + name + "' not found.")
			continue
		}
		sides[i] = newComparison(e, s.hw, pulled)
	}
	if missing == len(names) {
		return missing
	}

	a.println()
	RenderComparison(a.Out, sides[0], sides[1], left, right)
	return missing
}
