// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandy-sp/ollama-scout/internal/config"
)

func (a *App) newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage named settings profiles",
		Long: `A profile is a named set of overrides on top of the base settings, for
example a "work" profile pointing at a remote Ollama host. The active profile
applies to every run; --profile selects another one for a single run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.listProfiles()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.listProfiles()
		},
	})
	cmd.AddCommand(a.newProfileCreateCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.editProfiles("delete", args[0], func(c *config.Config) error {
				return c.DeleteProfile(args[0])
			}, "Deleted profile "+args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "switch NAME",
		Short: "Make a profile active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.editProfiles("switch", args[0], func(c *config.Config) error {
				return c.SwitchProfile(args[0])
			}, "Active profile is now "+args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "set NAME KEY VALUE",
		Short:   "Set one override in a profile",
		Example: `  ollama-scout profile set work ollama_host http://gpu-box:11434`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, key, value := args[0], args[1], args[2]
			return a.editProfiles("set", name, func(c *config.Config) error {
				return c.SetProfileValue(name, key, value)
			}, fmt.Sprintf("Set %s = %s in profile %s", key, value, name))
		},
	})
	return cmd
}

func (a *App) newProfileCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME [KEY=VALUE...]",
		Short: "Create a profile with optional overrides",
		Example: `  ollama-scout profile create work ollama_host=http://gpu-box:11434 default_top_n=5
  ollama-scout profile create laptop offline_mode=true`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			overrides, err := config.ParseAssignments(args[1:])
			if err != nil {
				return &UsageError{Field: "override", Reason: err.Error(), Example: "key=value"}
			}
			known := 0
			for k := range overrides {
				if config.IsKey(k) {
					known++
				}
			}
			var skipped []string
			err = a.editProfiles("create", name, func(c *config.Config) error {
				var cerr error
				skipped, cerr = c.CreateProfile(name, overrides)
				return cerr
			}, fmt.Sprintf("Created profile %s with %d override(s)", name, known))
			for _, k := range skipped {
				a.warn("Ignored unknown key: " + k)
			}
			return err
		},
	}
}

// editProfiles applies a mutation to the loaded config and saves it.
func (a *App) editProfiles(action, name string, mutate func(*config.Config) error, done string) error {
	if err := a.checkWritable("profile", action); err != nil {
		return err
	}
	if err := mutate(a.cfg); err != nil {
		if errors.Is(err, config.ErrProfileNotFound) {
			return &NotFoundError{Resource: "profile", ID: name, Hint: "Profiles: " + strings.Join(a.cfg.ProfileNames(), ", ")}
		}
		return &CommandError{Command: "profile", Action: action, Reason: name, Err: err}
	}
	if err := a.saveConfig(); err != nil {
		return err
	}
	a.success(done)
	return nil
}

func (a *App) listProfiles() error {
	active := config.DefaultProfile
	if a.cfg.ActiveProfile != "" {
		active = a.cfg.ActiveProfile
	}

	t := NewTable("Profiles",
		Column{Header: "Profile"},
		Column{Header: "Active"},
		Column{Header: "Overrides", MaxWidth: 60},
	)
	for _, name := range a.cfg.ProfileNames() {
		mark := Plain("")
		if name == active {
			mark = Styled(SuccessStyle, "*")
		}
		t.AddRow(Plain(name), mark, Plain(formatOverrides(a.cfg.Profiles[name])))
	}
	a.println()
	t.Render(a.Out)
	a.println()
	return nil
}

func formatOverrides(o map[string]any) string {
	if len(o) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, o[k])
	}
	return strings.Join(parts, " ")
}
