// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Show and edit persistent settings.
//
// Commands:
//   config show [--json]   Effective settings for this run
//   config set KEY VALUE   Persist one setting (into --profile when given)
//   config path            Print the config file location

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandy-sp/ollama-scout/internal/config"
)

// configShowData is the config show --json payload.
type configShowData struct {
	Path     string         `json:"path"`
	Profile  string         `json:"profile"`
	Settings map[string]any `json:"settings"`
}

func (a *App) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change persistent settings",
		Long: `Settings live in config.toml under the ollama-scout home directory
(~/.ollama-scout, or $OLLAMA_SCOUT_HOME). Environment variables such as
OLLAMA_HOST override saved values for a single run and are never written back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showConfig(false)
		},
	}
	cmd.AddCommand(a.newConfigShowCommand())
	cmd.AddCommand(a.newConfigSetCommand())
	cmd.AddCommand(a.newConfigPathCommand())
	return cmd
}

func (a *App) activeProfile() string {
	if a.profile != "" {
		return a.profile
	}
	if a.cfg != nil && a.cfg.ActiveProfile != "" {
		return a.cfg.ActiveProfile
	}
	return config.DefaultProfile
}

func (a *App) newConfigShowCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showConfig(jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func (a *App) showConfig(jsonOut bool) error {
	if jsonOut {
		data := configShowData{Path: a.cfgPath, Profile: a.activeProfile(), Settings: a.settings.Map()}
		return NewJSONResponse("config show", data).Print(a.Out)
	}

	t := NewTable("Settings (profile: "+a.activeProfile()+")",
		Column{Header: "Key"},
		Column{Header: "Value"},
	)
	for _, k := range config.Keys() {
		v, err := a.settings.Get(k)
		if err != nil {
			continue
		}
		val := fmt.Sprint(v)
		if val == "" {
			t.AddRow(Plain(k), Styled(DimStyle, "(unset)"))
			continue
		}
		t.AddRow(Plain(k), Styled(ValueStyle, val))
	}
	a.println()
	t.Render(a.Out)
	a.println()
	a.println(DimStyle.Render("Config file: " + a.cfgPath))
	return nil
}

func (a *App) newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Persist one setting",
		Long: "Persist one setting. Valid keys: " + strings.Join(config.Keys(), ", ") + `.
With --profile, the value is stored as an override in that profile instead.`,
		Example: `  ollama-scout config set default_use_case coding
  ollama-scout config set ollama_host http://gpu-box:11434
  ollama-scout --profile work config set default_top_n 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if !config.IsKey(key) {
				return &UsageError{
					Field:   "key",
					Value:   key,
					Reason:  "unknown setting",
					Example: "valid keys: " + strings.Join(config.Keys(), ", "),
				}
			}
			if err := a.checkWritable("config", "set"); err != nil {
				return err
			}

			target := "base settings"
			var err error
			if a.profile != "" && a.profile != config.DefaultProfile {
				target = "profile " + a.profile
				err = a.cfg.SetProfileValue(a.profile, key, value)
			} else {
				err = a.cfg.Set(key, value)
			}
			if err != nil {
				return &UsageError{Field: key, Value: value, Reason: err.Error()}
			}
			if err := a.saveConfig(); err != nil {
				return err
			}
			a.success(fmt.Sprintf("Set %s = %s (%s)", key, value, target))
			return nil
		},
	}
}

func (a *App) newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.println(a.cfgPath)
			return nil
		},
	}
}

// checkWritable refuses to save over a config file that failed to load.
// A dangling active_profile is the exception: the file loaded with the
// default profile active, and saving writes that repair back.
func (a *App) checkWritable(command, action string) error {
	if a.cfgErr == nil || errors.Is(a.cfgErr, config.ErrActiveProfileMissing) {
		return nil
	}
	return &CommandError{Command: command, Action: action, Reason: "config file is unreadable; fix it before saving", Err: a.cfgErr}
}

// saveConfig writes the loaded config back. Environment overrides live only
// in a.settings, so they are never persisted.
func (a *App) saveConfig() error {
	if err := config.SaveTOML(a.cfg, a.cfgPath); err != nil {
		return &CommandError{Command: "config", Action: "save", Reason: "cannot write " + a.cfgPath, Err: err}
	}
	return nil
}
