// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/detect"
	"github.com/sandy-sp/ollama-scout/internal/recommend"
)

// Prompt is the canned prompt used for real measurements.
const Prompt = "Explain in three sentences what a CPU cache is and why it matters."

const (
	// tokensPerWord approximates tokenizer output from a word count.
	tokensPerWord = 0.75
	// minElapsedSec avoids division blow-up on near-instant runs.
	minElapsedSec = 0.1
	// DefaultTimeout bounds one measurement.
	DefaultTimeout = 60 * time.Second
)

// ModelRunner runs a prompt through a local model.
type ModelRunner interface {
	Installed() bool
	Run(ctx context.Context, model, prompt string) (string, error)
}

// Measurer times real generations through a ModelRunner.
//
// Measurer is not safe for concurrent use; runs are sequential so they do
// not compete for the same GPU.
type Measurer struct {
	runner  ModelRunner
	timeout time.Duration
	history History
	log     zerolog.Logger

	now func() time.Time
}

// NewMeasurer creates a measurer. A zero timeout uses DefaultTimeout.
func NewMeasurer(runner ModelRunner, timeout time.Duration, log zerolog.Logger) *Measurer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Measurer{runner: runner, timeout: timeout, log: log, now: time.Now}
}

// WithHistory records successful measurements in h.
func (m *Measurer) WithHistory(h History) *Measurer {
	m.history = h
	return m
}

// Measure runs the canned prompt through model ("name" or "name:tag").
// local holds the "name:tag" references of pulled models; model must be
// one of them exactly, so a run never triggers a download. It returns false
// when the runner is absent, the tag is not local, or the run fails, times
// out or prints nothing.
func (m *Measurer) Measure(ctx context.Context, model string, local []string) (Measurement, bool) {
	if m.runner == nil || !m.runner.Installed() {
		return Measurement{}, false
	}
	if !localTags(local)[fullTag(model)] {
		m.log.Debug().Str("model", model).Msg("skipping benchmark: model not pulled")
		return Measurement{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := m.now()
	out, err := m.runner.Run(ctx, model, Prompt)
	elapsed := m.now().Sub(start)
	if err != nil {
		m.log.Debug().Err(err).Str("model", model).Msg("benchmark run failed")
		return Measurement{}, false
	}
	words := len(strings.Fields(out))
	if words == 0 {
		m.log.Debug().Str("model", model).Msg("benchmark produced no output")
		return Measurement{}, false
	}

	tokens := float64(words) * tokensPerWord
	tps := round1(tokens / math.Max(elapsed.Seconds(), minElapsedSec))
	return Measurement{
		Model:        model,
		StartTime:    start,
		Elapsed:      elapsed,
		Words:        words,
		Tokens:       tokens,
		TokensPerSec: tps,
		Rating:       Rate(tps),
	}, true
}

// MeasurePulled measures up to n recommendations whose models are pulled,
// in ranked order. The recommended tag is run when it is local; otherwise
// the first local tag of the same model is run instead. Each result carries
// the formula estimate for the variant that actually ran, when the catalog
// knows it. Results are recorded in the history when one is set.
func (m *Measurer) MeasurePulled(ctx context.Context, recs []recommend.Recommendation, local []string, hw *detect.HardwareProfile, n int) []Measurement {
	if n <= 0 {
		n = 3
	}
	var out []Measurement
	for i := range recs {
		if len(out) >= n || ctx.Err() != nil {
			break
		}
		rec := &recs[i]
		model, ok := pickLocalTag(rec, local)
		if !ok {
			continue
		}
		res, ok := m.Measure(ctx, model, local)
		if !ok {
			continue
		}
		if ran, ok := ranVariant(rec, model, hw); ok {
			est := EstimateSpeed(ran, hw)
			res.Estimate = &est
		}
		m.record(ctx, &res)
		out = append(out, res)
	}
	return out
}

// fullTag normalizes a model reference to "name:tag", filling in "latest"
// the way ollama resolves untagged names.
func fullTag(model string) string {
	name, tag := catalog.SplitName(model)
	return catalog.Label(name, tag)
}

func localTags(local []string) map[string]bool {
	set := make(map[string]bool, len(local))
	for _, t := range local {
		set[fullTag(t)] = true
	}
	return set
}

// pickLocalTag chooses which local tag stands in for rec.
func pickLocalTag(rec *recommend.Recommendation, local []string) (string, bool) {
	if localTags(local)[fullTag(rec.Label())] {
		return rec.Label(), true
	}
	for _, t := range local {
		if name, _ := catalog.SplitName(t); name == rec.Model.Name {
			return t, true
		}
	}
	return "", false
}

// ranVariant returns the recommendation for the variant behind model. A
// substituted tag is rescored so its estimate uses its own size and mode.
func ranVariant(rec *recommend.Recommendation, model string, hw *detect.HardwareProfile) (*recommend.Recommendation, bool) {
	if fullTag(model) == fullTag(rec.Label()) {
		return rec, true
	}
	_, tag := catalog.SplitName(model)
	for _, v := range rec.Model.Variants {
		if v.Tag != tag {
			continue
		}
		vd := recommend.ScoreVariant(v, hw)
		if !vd.Feasible() {
			return nil, false
		}
		sub := *rec
		sub.Variant = v
		sub.Verdict = vd
		return &sub, true
	}
	return nil, false
}

func (m *Measurer) record(ctx context.Context, res *Measurement) {
	if m.history == nil {
		return
	}
	if err := m.history.SaveMeasurement(ctx, res); err != nil {
		m.log.Warn().Err(err).Msg("failed to save benchmark result")
	}
}
