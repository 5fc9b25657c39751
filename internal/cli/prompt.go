// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// pullChoices caps the pull prompt to the top recommendations.
const pullChoices = 10

// promptConfirm asks a yes/no question. Replaced in tests.
var promptConfirm = defaultPromptConfirm

// promptSelect asks the user to pick one option; "" means skip. Replaced
// in tests.
var promptSelect = defaultPromptSelect

// promptInput asks for one line of free text; "" means no answer. Replaced
// in tests.
var promptInput = defaultPromptInput

func defaultPromptConfirm(in io.Reader, out io.Writer, question string) bool {
	if !CanPrompt(in, out) {
		return false
	}

	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithInput(in).WithOutput(out).Run()

	if err != nil {
		return false
	}
	return confirmed
}

func defaultPromptSelect(in io.Reader, out io.Writer, title string, options []huh.Option[string]) string {
	if !CanPrompt(in, out) || len(options) == 0 {
		return ""
	}

	var choice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&choice),
		),
	).WithInput(in).WithOutput(out).Run()

	if err != nil {
		return ""
	}
	return choice
}

func defaultPromptInput(in io.Reader, out io.Writer, title, placeholder string) string {
	if !CanPrompt(in, out) {
		return ""
	}

	var value string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				Value(&value),
		),
	).WithInput(in).WithOutput(out).Run()

	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

// pullOptions lists the top recommendations plus a skip entry.
func pullOptions(recs []recommend.Recommendation) []huh.Option[string] {
	n := min(len(recs), pullChoices)
	opts := make([]huh.Option[string], 0, n+1)
	for _, rec := range recs[:n] {
		key := rec.Label()
		if rec.Pulled {
			key += " (already pulled)"
		}
		opts = append(opts, huh.NewOption(key, rec.Label()))
	}
	return append(opts, huh.NewOption("Skip", ""))
}

// promptExport asks whether to save a Markdown report.
func (a *App) promptExport() bool {
	return promptConfirm(a.In, a.Out, "Save results as a Markdown report?")
}

// promptPull offers to pull one of the top recommendations and returns
// the chosen "name:tag", or "".
func (a *App) promptPull(recs []recommend.Recommendation) string {
	return promptSelect(a.In, a.Out, "Pull a recommended model?", pullOptions(recs))
}
