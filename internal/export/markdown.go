// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a report as Markdown with YAML front matter.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export renders the report.
func (e *MarkdownExporter) Export(r *Report) ([]byte, error) {
	if r == nil {
		return nil, errors.New("report is nil")
	}
	if r.Hardware == nil {
		return nil, errors.New("report has no hardware profile")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "report_id: %s\n", r.ID)
	fmt.Fprintf(&sb, "generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "generator: %s\n", r.Generator)
	if r.CatalogSource != "" {
		fmt.Fprintf(&sb, "catalog_source: %s\n", escapeYAML(r.CatalogSource))
	}
	sb.WriteString("---\n\n")

	sb.WriteString("# ollama-scout Report\n\n")
	fmt.Fprintf(&sb, "*Generated %s*\n\n", formatTimestamp(r.GeneratedAt))

	e.writeHardware(&sb, r)

	if r.Empty() {
		sb.WriteString("No models fit this hardware.\n\n")
	}
	for _, s := range r.Sections {
		e.writeSection(&sb, s)
	}

	if len(r.Estimates) > 0 {
		e.writeEstimates(&sb, r.Estimates)
	}
	if len(r.Measurements) > 0 {
		e.writeMeasurements(&sb, r.Measurements)
	}

	e.writeLegend(&sb)
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// SECTIONS
// =============================================================================

func (e *MarkdownExporter) writeHardware(sb *strings.Builder, r *Report) {
	hw := r.Hardware
	sb.WriteString("## System Hardware\n\n")
	sb.WriteString("| Component | Details |\n")
	sb.WriteString("|-----------|---------|\n")
	writeRow(sb, "OS", hw.OS)
	writeRow(sb, "CPU", hw.CPUName)
	writeRow(sb, "Cores / Threads", fmt.Sprintf("%d / %d", hw.CPUCores, hw.CPUThreads))
	writeRow(sb, "RAM", fmt.Sprintf("%.1f GB", hw.RAMGB))
	writeRow(sb, "Unified Memory", yesNo(hw.UnifiedMemory))

	switch len(hw.GPUs) {
	case 0:
		writeRow(sb, "GPU", "None detected")
	case 1:
		writeRow(sb, "GPU", hw.GPUs[0].String())
	default:
		for i, g := range hw.GPUs {
			writeRow(sb, fmt.Sprintf("GPU %d", i+1), g.String())
		}
		writeRow(sb, "Total VRAM", fmt.Sprintf("%.1f GB", hw.TotalVRAMGB()))
	}
	sb.WriteString("\n")
}

func (e *MarkdownExporter) writeSection(sb *strings.Builder, s Section) {
	fmt.Fprintf(sb, "## %s\n\n", escapeMarkdown(s.Title))
	sb.WriteString("| # | Model | Tag | Quant | Size | Params | Fit | Mode | Score | Note | Status |\n")
	sb.WriteString("|---|-------|-----|-------|------|--------|-----|------|-------|------|--------|\n")
	for i := range s.Recommendations {
		rec := &s.Recommendations[i]
		writeRow(sb,
			fmt.Sprint(i+1),
			rec.Model.Name,
			rec.Variant.Tag,
			rec.Variant.Quantization,
			fmt.Sprintf("%.1f GB", rec.Variant.SizeGB),
			rec.Variant.ParamSize,
			rec.Fit.String(),
			rec.Mode.String(),
			fmt.Sprint(rec.Score),
			rec.Note,
			status(rec),
		)
	}
	sb.WriteString("\n")
}

func (e *MarkdownExporter) writeEstimates(sb *strings.Builder, ests []benchmark.Estimate) {
	sb.WriteString("## Inference Speed Estimates\n\n")
	sb.WriteString("| Model | Mode | Est. Speed | Rating |\n")
	sb.WriteString("|-------|------|------------|--------|\n")
	for _, est := range ests {
		writeRow(sb, est.Model, est.Mode.String(), benchmark.FormatTokensPerSec(est.TokensPerSec), est.Rating.String())
	}
	sb.WriteString("\n*Estimates are rough heuristics from hardware specs, not measurements.*\n\n")
}

func (e *MarkdownExporter) writeMeasurements(sb *strings.Builder, ms []benchmark.Measurement) {
	sb.WriteString("## Measured Speeds\n\n")
	sb.WriteString("| Model | Speed | Rating | Elapsed | vs Estimate |\n")
	sb.WriteString("|-------|-------|--------|---------|-------------|\n")
	for i := range ms {
		m := &ms[i]
		delta := "-"
		if d, ok := m.Delta(); ok {
			delta = fmt.Sprintf("%+.1f t/s", d)
		}
		writeRow(sb, m.Model, benchmark.FormatTokensPerSec(m.TokensPerSec), m.Rating.String(), benchmark.FormatDuration(m.Elapsed), delta)
	}
	sb.WriteString("\n")
}

func (e *MarkdownExporter) writeLegend(sb *strings.Builder) {
	sb.WriteString("## Legend\n\n")
	sb.WriteString("**Fit labels**\n\n")
	fmt.Fprintf(sb, "- **%s**: fits fully in VRAM (or comfortably in unified memory)\n", recommend.FitExcellent)
	fmt.Fprintf(sb, "- **%s**: partial CPU offload, or a tight unified-memory fit\n", recommend.FitGood)
	fmt.Fprintf(sb, "- **%s**: CPU-only, slower\n\n", recommend.FitPossible)
	sb.WriteString("**Run modes**\n\n")
	fmt.Fprintf(sb, "- **%s**: full GPU acceleration\n", recommend.ModeGPU)
	fmt.Fprintf(sb, "- **%s**: layers split across several GPUs\n", recommend.ModeMultiGPU)
	fmt.Fprintf(sb, "- **%s**: split across GPU and system RAM\n", recommend.ModeCPUGPU)
	fmt.Fprintf(sb, "- **%s**: CPU inference only\n\n", recommend.ModeCPU)
	sb.WriteString("---\n\n")
	sb.WriteString("*Report generated by [ollama-scout](https://github.com/sandy-sp/ollama-scout)*\n")
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func writeRow(sb *strings.Builder, cells ...string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(escapeCell(c))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func status(rec *recommend.Recommendation) string {
	if rec.Pulled {
		return "Pulled"
	}
	return "-"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// escapeCell keeps a value inside one table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		return "-"
	}
	return s
}

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
