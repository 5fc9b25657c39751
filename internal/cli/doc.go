// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ollama-scout command tree.
//
// The root command scans the local hardware, loads the model catalog and
// prints ranked recommendations. Subcommands cover single-model detail,
// side-by-side comparison, speed estimates and measurements, pulling,
// catalog refresh, health checks and config/profile management.
//
// # Commands
//
//	ollama-scout                     Recommend models (same as "recommend")
//	ollama-scout recommend           Ranked recommendations, grouped by use case
//	ollama-scout model NAME          Every variant of one model with its fit
//	ollama-scout compare A B         Best variants of two models side by side
//	ollama-scout benchmark           Speed estimates and real measurements
//	ollama-scout pull MODEL          Pull a model through the ollama binary
//	ollama-scout update-models       Force-refresh the catalog cache
//	ollama-scout doctor              System health checks
//	ollama-scout config ...          Show or change settings
//	ollama-scout profile ...         Manage named config profiles
//	ollama-scout version             Print version information
//
// Collaborators (hardware probe, model runner, catalog loader, store) are
// fields on App so tests can replace them with fakes.
package cli
