// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for every ollama-scout command.
//
// Colors are disabled for non-TTY output and when NO_COLOR is set;
// FORCE_COLOR overrides TTY detection.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for command titles and table titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// SectionStyle is used for section headers within commands.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")) // White

	// LabelStyle is used for left-aligned field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(20)

	// ValueStyle is used for regular values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Off-white

	// SuccessStyle is used for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Yellow/Orange

	// DimStyle is used for secondary information and hints.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray

	// SeparatorStyle is used for visual separators.
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	// HighlightStyle is used for emphasis.
	HighlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")) // Bright green

	// InfoStyle is used for informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")) // Blue

	// HeaderStyle is used for table column headers.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	// BoxStyle frames the banner and recommendation panels.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 2)

	// PanelStyle frames secondary panels such as the legend.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// =============================================================================
// DOMAIN STYLES
// =============================================================================

var (
	fitStyles = map[recommend.FitLabel]lipgloss.Style{
		recommend.FitExcellent: SuccessStyle,
		recommend.FitGood:      WarningStyle.Bold(true),
		recommend.FitPossible:  WarningStyle.Faint(true),
		recommend.FitTooLarge:  ErrorStyle.UnsetBold(),
	}

	modeStyles = map[recommend.RunMode]lipgloss.Style{
		recommend.ModeGPU:      InfoStyle,
		recommend.ModeMultiGPU: InfoStyle.Bold(true),
		recommend.ModeCPUGPU:   WarningStyle,
		recommend.ModeCPU:      DimStyle,
		recommend.ModeNA:       ErrorStyle.UnsetBold(),
	}

	ratingStyles = map[benchmark.Rating]lipgloss.Style{
		benchmark.RatingFast:     SuccessStyle,
		benchmark.RatingModerate: WarningStyle.Bold(true),
		benchmark.RatingSlow:     WarningStyle.Faint(true),
	}

	// QuantStyle highlights quantization levels.
	QuantStyle = InfoStyle
)

// FitStyle returns the style for a fit label.
func FitStyle(f recommend.FitLabel) lipgloss.Style {
	if s, ok := fitStyles[f]; ok {
		return s
	}
	return ValueStyle
}

// ModeStyle returns the style for a run mode.
func ModeStyle(m recommend.RunMode) lipgloss.Style {
	if s, ok := modeStyles[m]; ok {
		return s
	}
	return ValueStyle
}

// RatingStyle returns the style for a speed rating.
func RatingStyle(r benchmark.Rating) lipgloss.Style {
	if s, ok := ratingStyles[r]; ok {
		return s
	}
	return ValueStyle
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// RenderSeparator renders a horizontal separator line, 70 characters
// unless a width is given.
func RenderSeparator(width ...int) string {
	w := 70
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return SeparatorStyle.Render(strings.Repeat("=", w))
}

// RenderSeparatorAdaptive renders a separator sized to the terminal.
func RenderSeparatorAdaptive() string {
	width := GetTerminalWidth()
	if width > 4 {
		width -= 4
	}
	if width > 80 {
		width = 80
	}
	return RenderSeparator(width)
}
