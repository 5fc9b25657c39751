// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama wraps the local Ollama installation.
//
// Two collaborators live here:
//
//   - Runner drives the ollama binary: version, `ollama list`, pull and
//     single-prompt runs. Commands go through a CommandRunner so tests can
//     substitute canned output.
//   - Client talks to the local HTTP API for health checks and the model
//     list. Runner falls back to it when the binary is missing but a
//     server answers.
//
// # Key Types
//
//   - Runner: binary wrapper with per-command timeouts
//   - Client: HTTP client for /, /api/tags and /api/version
//   - RunnerError, ClientError: typed errors with sentinel kinds
//
// # Usage
//
//	r := ollama.NewRunner(ollama.NewClient(host), log)
//	if r.Installed() {
//	    fmt.Println(r.ListPulledTags(ctx))
//	}
package ollama
