// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes recommendation reports to disk.
//
// A Report bundles the hardware profile, the ranked recommendations
// (grouped by use case or as one flat list) and any speed figures. An
// Exporter renders it; Markdown is the human report and JSON serves
// scripts.
//
// # Key Types
//
//   - Report: everything a report shows, with a unique id
//   - Exporter: renders a Report (MarkdownExporter, JSONExporter)
//   - Options: output path or directory
//
// # Usage
//
//	r := export.NewReport(hw, time.Now())
//	r.AddGroups(groups)
//	path, err := export.ExportToFile(r, export.NewMarkdownExporter(), &export.Options{OutputDir: dir})
package export
