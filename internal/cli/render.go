// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Terminal views shared by the recommend, model, compare and
// benchmark commands.

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/detect"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// noteWidth caps the Note column so tables stay readable on 120 columns.
const noteWidth = 40

// =============================================================================
// BANNER AND FOOTER
// =============================================================================

// RenderBanner writes the title box.
func RenderBanner(w io.Writer, version string) {
	title := TitleStyle.Render("ollama") + SectionStyle.Render("-scout") +
		DimStyle.Render("  v"+version+"  |  LLM Hardware Advisor")
	fmt.Fprintln(w, BoxStyle.Render(title))
}

// RenderFooter writes the closing tips line.
func RenderFooter(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, DimStyle.Render("Run with --help for all options  |  --offline to skip the API fetch  |  --export to save a report"))
}

// =============================================================================
// HARDWARE
// =============================================================================

// RenderHardware writes the detected hardware as a two-column table.
func RenderHardware(w io.Writer, hw *detect.HardwareProfile) {
	t := NewTable("System Hardware", Column{Header: "Component"}, Column{Header: "Details"})
	t.AddRow(Styled(LabelStyle.UnsetWidth(), "OS"), Plain(hw.OS))
	t.AddRow(Styled(LabelStyle.UnsetWidth(), "CPU"), Plain(hw.CPUName))
	t.AddRow(Styled(LabelStyle.UnsetWidth(), "Cores / Threads"), Plain(fmt.Sprintf("%d cores / %d threads", hw.CPUCores, hw.CPUThreads)))
	t.AddRow(Styled(LabelStyle.UnsetWidth(), "RAM"), Plain(fmt.Sprintf("%.1f GB", hw.RAMGB)))
	if hw.UnifiedMemory {
		t.AddRow(Styled(LabelStyle.UnsetWidth(), "Memory"), Styled(InfoStyle, "Unified (shared GPU/CPU)"))
	}
	switch {
	case len(hw.GPUs) == 0:
		t.AddRow(Styled(LabelStyle.UnsetWidth(), "GPU"), Styled(DimStyle, "None detected (CPU inference only)"))
	default:
		for i, g := range hw.GPUs {
			label := "GPU"
			if i > 0 {
				label = fmt.Sprintf("GPU %d", i+1)
			}
			t.AddRow(Styled(LabelStyle.UnsetWidth(), label), Plain(g.String()))
		}
		if hw.MultiGPU() {
			t.AddRow(Styled(LabelStyle.UnsetWidth(), "Total VRAM"), Styled(InfoStyle, fmt.Sprintf("%.1f GB pooled", hw.TotalVRAMGB())))
		}
	}
	t.Render(w)
	fmt.Fprintln(w)
}

// RenderNoGPUHints writes the reasons a GPU may not have been found.
func RenderNoGPUHints(w io.Writer, hints []string) {
	for _, h := range hints {
		fmt.Fprintln(w, DimStyle.Render("  - "+h))
	}
	if len(hints) > 0 {
		fmt.Fprintln(w)
	}
}

// =============================================================================
// RECOMMENDATIONS
// =============================================================================

func formatSize(gb float64) string {
	if gb <= 0 {
		return "?"
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func statusCell(pulled bool) Cell {
	if pulled {
		return Styled(SuccessStyle, "Pulled")
	}
	return Styled(DimStyle, "Available")
}

func useCaseList(ucs []catalog.UseCase) string {
	names := make([]string, len(ucs))
	for i, uc := range ucs {
		names[i] = string(uc)
	}
	return strings.Join(names, ", ")
}

// RenderGrouped writes one table per non-empty use case.
func RenderGrouped(w io.Writer, groups recommend.Groups) {
	for _, uc := range groups.NonEmpty() {
		t := NewTable(uc.Title()+" Models",
			Column{Header: "Model"},
			Column{Header: "Tag"},
			Column{Header: "Quant"},
			Column{Header: "Size", Align: AlignRight},
			Column{Header: "Params"},
			Column{Header: "Fit"},
			Column{Header: "Mode"},
			Column{Header: "Score", Align: AlignRight},
			Column{Header: "Note", MaxWidth: noteWidth},
			Column{Header: "Status"},
		)
		for _, rec := range groups[uc] {
			t.AddRow(
				Styled(SectionStyle, rec.Model.Name),
				Plain(rec.Variant.Tag),
				Styled(QuantStyle, rec.Variant.Quantization),
				Plain(formatSize(rec.Variant.SizeGB)),
				Styled(DimStyle, rec.Variant.ParamSize),
				Styled(FitStyle(rec.Fit), rec.Fit.String()),
				Styled(ModeStyle(rec.Mode), rec.Mode.String()),
				Plain(strconv.Itoa(rec.Score)),
				Styled(DimStyle, rec.Note),
				statusCell(rec.Pulled),
			)
		}
		t.Render(w)
		fmt.Fprintln(w)
	}
}

// RenderFlat writes a single ranked table.
func RenderFlat(w io.Writer, title string, recs []recommend.Recommendation) {
	t := NewTable(title,
		Column{Header: "#", Align: AlignRight},
		Column{Header: "Model"},
		Column{Header: "Tag"},
		Column{Header: "Quant"},
		Column{Header: "Size", Align: AlignRight},
		Column{Header: "Use Cases", MaxWidth: 24},
		Column{Header: "Fit"},
		Column{Header: "Mode"},
		Column{Header: "Score", Align: AlignRight},
		Column{Header: "Status"},
	)
	for i, rec := range recs {
		t.AddRow(
			Styled(DimStyle, strconv.Itoa(i+1)),
			Styled(SectionStyle, rec.Model.Name),
			Plain(rec.Variant.Tag),
			Styled(QuantStyle, rec.Variant.Quantization),
			Plain(formatSize(rec.Variant.SizeGB)),
			Plain(useCaseList(rec.Model.UseCases)),
			Styled(FitStyle(rec.Fit), rec.Fit.String()),
			Styled(ModeStyle(rec.Mode), rec.Mode.String()),
			Plain(strconv.Itoa(rec.Score)),
			statusCell(rec.Pulled),
		)
	}
	t.Render(w)
	fmt.Fprintln(w)
}

// RenderLegend explains fit labels and run modes.
func RenderLegend(w io.Writer) {
	var sb strings.Builder
	sb.WriteString(SectionStyle.Render("Fit:   "))
	sb.WriteString(FitStyle(recommend.FitExcellent).Render("Excellent") + DimStyle.Render(" fits fully in VRAM  |  "))
	sb.WriteString(FitStyle(recommend.FitGood).Render("Good") + DimStyle.Render(" partial CPU offload  |  "))
	sb.WriteString(FitStyle(recommend.FitPossible).Render("Possible") + DimStyle.Render(" CPU only, slower"))
	sb.WriteString("\n")
	sb.WriteString(SectionStyle.Render("Mode:  "))
	sb.WriteString(ModeStyle(recommend.ModeGPU).Render("GPU") + DimStyle.Render(" single GPU  |  "))
	sb.WriteString(ModeStyle(recommend.ModeMultiGPU).Render("Multi-GPU") + DimStyle.Render(" split across GPUs  |  "))
	sb.WriteString(ModeStyle(recommend.ModeCPUGPU).Render("CPU+GPU") + DimStyle.Render(" GPU plus RAM  |  "))
	sb.WriteString(ModeStyle(recommend.ModeCPU).Render("CPU") + DimStyle.Render(" CPU only"))
	fmt.Fprintln(w, PanelStyle.Render(sb.String()))
}

// =============================================================================
// SPEED
// =============================================================================

// RenderEstimates writes formula speed estimates.
func RenderEstimates(w io.Writer, ests []benchmark.Estimate) {
	if len(ests) == 0 {
		return
	}
	t := NewTable("Inference Speed Estimates",
		Column{Header: "Model"},
		Column{Header: "Mode"},
		Column{Header: "Est. Speed", Align: AlignRight},
		Column{Header: "Rating"},
	)
	for _, e := range ests {
		t.AddRow(
			Styled(SectionStyle, e.Model),
			Styled(ModeStyle(e.Mode), e.Mode.String()),
			Plain(benchmark.FormatTokensPerSec(e.TokensPerSec)),
			Styled(RatingStyle(e.Rating), e.Rating.String()),
		)
	}
	t.Render(w)
	fmt.Fprintln(w, DimStyle.Render("Estimates only. Actual speed depends on context length, system load and model architecture."))
	fmt.Fprintln(w)
}

// RenderMeasurements writes real measurements next to their estimates.
func RenderMeasurements(w io.Writer, title string, ms []benchmark.Measurement, showTime bool) {
	if len(ms) == 0 {
		return
	}
	cols := []Column{}
	if showTime {
		cols = append(cols, Column{Header: "When"})
	}
	cols = append(cols,
		Column{Header: "Model"},
		Column{Header: "Elapsed", Align: AlignRight},
		Column{Header: "Tokens", Align: AlignRight},
		Column{Header: "Measured", Align: AlignRight},
		Column{Header: "Rating"},
		Column{Header: "Estimate", Align: AlignRight},
		Column{Header: "Delta", Align: AlignRight},
	)
	t := NewTable(title, cols...)
	for i := range ms {
		m := &ms[i]
		est, delta := "N/A", ""
		if m.Estimate != nil {
			est = benchmark.FormatTokensPerSec(m.Estimate.TokensPerSec)
		}
		if d, ok := m.Delta(); ok {
			delta = fmt.Sprintf("%+.1f", d)
		}
		var cells []Cell
		if showTime {
			cells = append(cells, Styled(DimStyle, m.StartTime.Local().Format(time.DateTime)))
		}
		cells = append(cells,
			Styled(SectionStyle, m.Model),
			Plain(benchmark.FormatDuration(m.Elapsed)),
			Plain(fmt.Sprintf("%.0f", m.Tokens)),
			Plain(benchmark.FormatTokensPerSec(m.TokensPerSec)),
			Styled(RatingStyle(m.Rating), m.Rating.String()),
			Styled(DimStyle, est),
			Plain(delta),
		)
		t.AddRow(cells...)
	}
	t.Render(w)
	fmt.Fprintln(w)
}

// =============================================================================
// MODEL DETAIL
// =============================================================================

// RenderModelDetail writes every variant of e with its verdict, then the
// best fit and its pull command. explain adds the deciding rule.
func RenderModelDetail(w io.Writer, e *catalog.Entry, hw *detect.HardwareProfile, pulled bool, explain bool) {
	header := TitleStyle.Render(e.Name) + "  " + DimStyle.Render(useCaseList(e.UseCases))
	if pulled {
		header += "  " + SuccessStyle.Render("Pulled")
	}
	fmt.Fprintln(w, BoxStyle.Render(header))
	fmt.Fprintln(w, "  "+DimStyle.Render(e.Description))
	fmt.Fprintln(w)

	cols := []Column{
		{Header: "Tag"},
		{Header: "Size", Align: AlignRight},
		{Header: "Params"},
		{Header: "Quant"},
		{Header: "Fit"},
		{Header: "Mode"},
		{Header: "Score", Align: AlignRight},
		{Header: "Note", MaxWidth: noteWidth},
	}
	if explain {
		cols = append(cols, Column{Header: "Rule"})
	}
	t := NewTable("Available Variants", cols...)
	for _, v := range e.Variants {
		vd, rule := recommend.ExplainVariant(v, hw)
		cells := []Cell{
			Plain(v.Tag),
			Plain(formatSize(v.SizeGB)),
			Plain(v.ParamSize),
			Styled(QuantStyle, v.Quantization),
			Styled(FitStyle(vd.Fit), vd.Fit.String()),
			Styled(ModeStyle(vd.Mode), vd.Mode.String()),
			Plain(strconv.Itoa(vd.Score)),
			Styled(DimStyle, vd.Note),
		}
		if explain {
			cells = append(cells, Styled(DimStyle, rule))
		}
		t.AddRow(cells...)
	}
	t.Render(w)
	fmt.Fprintln(w)

	best, _, ok := recommend.BestVariant(e, hw)
	if !ok {
		fmt.Fprintln(w, DimStyle.Render("No compatible variants found for your hardware."))
		return
	}
	label := catalog.Label(e.Name, best.Tag)
	body := SectionStyle.Render("Best fit:     ") + fmt.Sprintf("%s (%s, %s)", label, formatSize(best.SizeGB), best.Quantization) + "\n" +
		SectionStyle.Render("Pull command: ") + InfoStyle.Render("ollama pull "+label)
	fmt.Fprintln(w, BoxStyle.BorderForeground(SuccessStyle.GetForeground()).Render(body))
}

// =============================================================================
// COMPARE
// =============================================================================

// comparison is the best variant of one model, or nil when not found.
type comparison struct {
	Entry    *catalog.Entry
	Rec      *recommend.Recommendation
	Estimate *benchmark.Estimate
}

func newComparison(e *catalog.Entry, hw *detect.HardwareProfile, pulled map[string]bool) *comparison {
	if e == nil {
		return nil
	}
	c := &comparison{Entry: e}
	v, vd, ok := recommend.BestVariant(e, hw)
	if !ok {
		return c
	}
	c.Rec = &recommend.Recommendation{Model: *e, Variant: v, Verdict: vd, Pulled: pulled[e.Name]}
	est := benchmark.EstimateSpeed(c.Rec, hw)
	c.Estimate = &est
	return c
}

func (c *comparison) field(name string) Cell {
	if c == nil {
		return Styled(DimStyle, "not found")
	}
	if c.Rec == nil {
		switch name {
		case "Model":
			return Styled(SectionStyle, c.Entry.Name)
		case "Description":
			return Styled(DimStyle, c.Entry.Description)
		case "Fit":
			return Styled(ErrorStyle.UnsetBold(), "No compatible variant")
		default:
			return Styled(DimStyle, "-")
		}
	}
	r := c.Rec
	switch name {
	case "Model":
		return Styled(SectionStyle, r.Model.Name)
	case "Description":
		return Styled(DimStyle, r.Model.Description)
	case "Best Tag":
		return Plain(r.Variant.Tag)
	case "Size":
		return Plain(formatSize(r.Variant.SizeGB))
	case "Params":
		return Plain(r.Variant.ParamSize)
	case "Quant":
		return Styled(QuantStyle, r.Variant.Quantization)
	case "Fit":
		return Styled(FitStyle(r.Fit), r.Fit.String())
	case "Mode":
		return Styled(ModeStyle(r.Mode), r.Mode.String())
	case "Score":
		return Plain(strconv.Itoa(r.Score))
	case "Est. Speed":
		return Styled(RatingStyle(c.Estimate.Rating), benchmark.FormatTokensPerSec(c.Estimate.TokensPerSec)+" ("+c.Estimate.Rating.String()+")")
	case "Status":
		return statusCell(r.Pulled)
	}
	return Plain("")
}

var comparisonFields = []string{"Model", "Description", "Best Tag", "Size", "Params", "Quant", "Fit", "Mode", "Score", "Est. Speed", "Status"}

// RenderComparison writes two models side by side.
func RenderComparison(w io.Writer, left, right *comparison, leftName, rightName string) {
	t := NewTable("Model Comparison",
		Column{Header: ""},
		Column{Header: leftName, MaxWidth: 50},
		Column{Header: rightName, MaxWidth: 50},
	)
	for _, f := range comparisonFields {
		t.AddRow(Styled(LabelStyle.UnsetWidth(), f), left.field(f), right.field(f))
	}
	t.Render(w)
	fmt.Fprintln(w)
}
