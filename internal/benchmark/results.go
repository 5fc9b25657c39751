// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Measurement is one timed run of the canned prompt.
type Measurement struct {
	Model        string        `json:"model"`
	StartTime    time.Time     `json:"start_time"`
	Elapsed      time.Duration `json:"elapsed"`
	Words        int           `json:"words"`
	Tokens       float64       `json:"tokens"`
	TokensPerSec float64       `json:"tokens_per_sec"`
	Rating       Rating        `json:"rating"`
	// Estimate is the formula figure for the same model, when known.
	Estimate *Estimate `json:"estimate,omitempty"`
}

// Delta returns measured minus estimated tokens per second.
func (m *Measurement) Delta() (float64, bool) {
	if m.Estimate == nil {
		return 0, false
	}
	return round1(m.TokensPerSec - m.Estimate.TokensPerSec), true
}

// Summary returns a one-line description of the measurement.
func (m *Measurement) Summary() string {
	s := fmt.Sprintf("%s: %s (%s) in %s", m.Model, FormatTokensPerSec(m.TokensPerSec), m.Rating, FormatDuration(m.Elapsed))
	if d, ok := m.Delta(); ok {
		s += fmt.Sprintf(", %+.1f vs estimate", d)
	}
	return s
}

// =============================================================================
// HISTORY
// =============================================================================

// History stores measurements across runs.
type History interface {
	SaveMeasurement(ctx context.Context, m *Measurement) error
	ListMeasurements(ctx context.Context, model string, limit int) ([]Measurement, error)
}

// Fastest returns the measurement with the highest throughput.
func Fastest(ms []Measurement) (*Measurement, bool) {
	if len(ms) == 0 {
		return nil, false
	}
	best := 0
	for i := range ms {
		if ms[i].TokensPerSec > ms[best].TokensPerSec {
			best = i
		}
	}
	return &ms[best], true
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// FormatTokensPerSec formats tokens per second for display.
func FormatTokensPerSec(tps float64) string {
	if tps == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f t/s", tps)
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "N/A"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
