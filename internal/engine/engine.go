// Package engine orchestrates the recommendation pipeline: hard-constraint
// filtering, content-similarity scoring, and TOPSIS ranking, with the
// resolution cascade as the fallback when filtering leaves nothing viable.
//
// Recommend is the only public entry point. Every stage is a deterministic
// pure function over its inputs, so the engine never retries (identical
// inputs always produce identical output) and it never raises errors for
// expected business outcomes (no viable candidate, degenerate ranking).
package engine

import (
	"fmt"
	"log/slog"

	"github.com/modelscout/modelscout/internal/cascade"
	"github.com/modelscout/modelscout/internal/catalog"
	"github.com/modelscout/modelscout/internal/constraint"
	"github.com/modelscout/modelscout/internal/factors"
	"github.com/modelscout/modelscout/internal/hardware"
	"github.com/modelscout/modelscout/internal/ranking"
	"github.com/modelscout/modelscout/internal/similarity"
)

// Result is the request-scoped output of one recommendation call. A fresh
// Result is built per call and the engine keeps no state between calls.
type Result struct {
	Ranked            []ranking.Ranked       `json:"ranked"`
	Rejections        []constraint.Rejection `json:"rejections,omitempty"`
	Reasoning         []string               `json:"reasoning"`
	ResolutionApplied string                 `json:"resolution_applied,omitempty"`
}

// Top returns the best-ranked candidate, or nil when nothing was viable.
func (r *Result) Top() *ranking.Ranked {
	if len(r.Ranked) == 0 {
		return nil
	}
	return &r.Ranked[0]
}

// Engine wires the pipeline together with an injected ranking policy.
type Engine struct {
	cfg ranking.Config
}

// New creates an engine with the canonical ranking policy.
func New() *Engine {
	return &Engine{cfg: ranking.DefaultConfig()}
}

// NewWithConfig creates an engine with an alternate ranking policy, used by
// tests and config-file weight overrides.
func NewWithConfig(cfg ranking.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Recommend runs the full pipeline for one request. The returned error covers
// programmer errors only (invalid weights, invalid ranking policy); an empty
// catalog after filtering is a successful-but-empty result with an explanatory
// reasoning trace.
func (e *Engine) Recommend(hw *hardware.Snapshot, cat *catalog.Catalog, prefs factors.Preferences) (*Result, error) {
	weights, err := factors.AggregateUser(prefs.Weights)
	if err != nil {
		return nil, err
	}
	prefs.Weights = weights

	result := &Result{}

	viable, rejections := constraint.Filter(cat.Entries(), hw)
	result.Rejections = rejections
	for _, rej := range rejections {
		result.Reasoning = append(result.Reasoning, "rejected: "+rej.Message)
	}
	slog.Debug("constraint filter complete", "viable", len(viable), "rejected", len(rejections))

	if len(viable) == 0 {
		outcome := cascade.Resolve(cat, hw, rejections)
		result.ResolutionApplied = string(outcome.Strategy)
		if outcome.Strategy == cascade.StrategyCloudOffload {
			result.Reasoning = append(result.Reasoning,
				"resolution: all candidates rejected and no relaxation strategy applied; "+outcome.Explanation)
			return result, nil
		}
		viable = outcome.Viable
		result.Reasoning = append(result.Reasoning,
			fmt.Sprintf("resolution: no candidate survived strict filtering; applied %s and recovered %d candidate(s)",
				outcome.Strategy, len(viable)))
	}

	scored := similarity.Score(viable, prefs)
	ranked, err := ranking.Rank(scored, hw, prefs, e.cfg)
	if err != nil {
		return nil, err
	}
	result.Ranked = ranked

	for _, rc := range ranked {
		line := fmt.Sprintf("ranked #%d: %s (closeness %.3f, similarity %.3f, hardware fit %.3f)",
			rc.Rank, rc.Entry.ID, rc.ClosenessScore, rc.ContentSimilarity, rc.HardwareFit)
		if rc.Note != "" {
			line += "; note: " + rc.Note
		}
		result.Reasoning = append(result.Reasoning, line)
	}

	slog.Debug("recommendation complete",
		"ranked", len(result.Ranked),
		"rejections", len(result.Rejections),
		"resolution", result.ResolutionApplied)

	return result, nil
}
