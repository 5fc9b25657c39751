// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/ollama"
)

// =============================================================================
// PULL
// =============================================================================

func (a *App) newPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "pull MODEL",
		Short:   "Pull a model through the ollama binary",
		Example: `  ollama-scout pull llama3.2:latest`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := args[0]
			a.info("Pulling model: " + SectionStyle.Render(model))
			err := a.runner().Pull(cmd.Context(), model, a.Out, a.Err)
			switch {
			case err == nil:
				a.success("Successfully pulled " + model)
				return nil
			case ollama.IsNotInstalled(err):
				return &CommandError{Command: "pull", Action: model, Reason: "Ollama is not installed (https://ollama.com/download)", Err: err}
			default:
				return &CommandError{Command: "pull", Action: model, Reason: "ollama pull returned an error", Err: err}
			}
		},
	}
}

// =============================================================================
// UPDATE MODELS
// =============================================================================

func (a *App) newUpdateModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-models",
		Short: "Force-refresh the model list from the Ollama library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.info("Fetching latest models from the Ollama library...")
			lr, err := a.loader().Load(cmd.Context(), catalog.LoadOptions{ForceRefresh: true})
			if err != nil {
				return err
			}
			if lr.Source != catalog.SourceLive {
				reason := "live fetch failed"
				if lr.FetchErr != nil {
					return &CommandError{Command: "update-models", Action: "fetch", Reason: reason, Err: lr.FetchErr}
				}
				return &CommandError{Command: "update-models", Action: "fetch", Reason: reason}
			}
			a.success(fmt.Sprintf("Model list updated. %d models cached.", len(lr.Entries)))
			return nil
		},
	}
}

// =============================================================================
// VERSION
// =============================================================================

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.printf("ollama-scout %s\n", a.Version)
			a.printf("  go:       %s\n", runtime.Version())
			a.printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			if info, ok := debug.ReadBuildInfo(); ok {
				for _, s := range info.Settings {
					if s.Key == "vcs.revision" {
						a.printf("  commit:   %s\n", s.Value)
					}
				}
			}
			return nil
		},
	}
}
