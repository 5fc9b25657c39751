// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// ollama-scout.
//
// Settings live in a TOML file that is created with defaults on first run.
// Named profiles hold partial overrides on top of the base settings.
//
// # Key Types
//
//   - Settings: every user-tunable value
//   - Config: base Settings, the active profile name and all profiles
//   - ValidationError, ValidateErrors: rejected values
//
// # Configuration Precedence
//
// Effective settings are resolved in this order (last wins):
//   - Built-in defaults
//   - ~/.ollama-scout/config.toml (OLLAMA_SCOUT_HOME moves the directory)
//   - The selected profile's overrides
//   - Environment variables (OLLAMA_SCOUT_*, OLLAMA_HOST)
//   - Command-line flags
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Warn().Err(err).Msg("using default config")
//	}
//	s, err := cfg.Effective(profileFlag)
//	s.ApplyEnvOverrides()
package config
