// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sandy-sp/ollama-scout/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a report in one format.
type Exporter interface {
	// Export converts a report to the target format and returns the content.
	Export(r *Report) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures where a report is written.
type Options struct {
	// Path is the exact output file. When set, OutputDir is ignored.
	Path string

	// OutputDir receives a timestamped file when Path is empty.
	// Default: current working directory
	OutputDir string
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile renders r and writes it, returning the absolute path.
func ExportToFile(r *Report, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}

	content, err := exporter.Export(r)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	path := opts.Path
	if path == "" {
		dir := opts.OutputDir
		if dir == "" {
			dir = "."
		}
		if dir, err = util.ExpandHome(dir); err != nil {
			return "", err
		}
		path = filepath.Join(dir, DefaultFilename(r.GeneratedAt, exporter.FileExtension()))
	} else if path, err = util.ExpandHome(path); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if err := util.AtomicWriteFile(abs, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return abs, nil
}

// ExportMarkdown writes a Markdown report.
func ExportMarkdown(r *Report, opts *Options) (string, error) {
	return ExportToFile(r, NewMarkdownExporter(), opts)
}

// DefaultFilename returns "ollama_scout_<YYYYMMDD_HHMMSS><ext>".
func DefaultFilename(t time.Time, ext string) string {
	if t.IsZero() {
		t = time.Now()
	}
	return "ollama_scout_" + t.Format("20060102_150405") + ext
}

// Write renders r to w, typically stdout.
func Write(w io.Writer, r *Report, exporter Exporter) error {
	content, err := exporter.Export(r)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}
