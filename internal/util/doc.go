// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across ollama-scout.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//   - ExpandHome: resolve a leading "~" against the user's home directory
//
// Display Width:
//   - DisplayWidth: terminal cell width of a string
//   - TruncateWidth: cut a string to a cell width with an ellipsis
//   - PadRight: pad a string to a cell width
//
// # Usage
//
//	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
//		return err
//	}
//	cell := util.PadRight(util.TruncateWidth(note, 35), 35)
package util
