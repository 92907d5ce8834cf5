// Package ranking orders scored candidates with TOPSIS: each candidate is
// scored by its relative distance to a synthetic ideal and anti-ideal
// combination of criteria values. The weighting scheme is injected through a
// Config so tests can run alternate policies without global state.
package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/modelscout/modelscout/internal/constraint"
	"github.com/modelscout/modelscout/internal/factors"
	"github.com/modelscout/modelscout/internal/hardware"
	"github.com/modelscout/modelscout/internal/similarity"
)

// Config holds the ranking policy. Weights must sum to 1.0.
type Config struct {
	WeightSimilarity  float64 `yaml:"weight_similarity"`
	WeightHardwareFit float64 `yaml:"weight_hardware_fit"`
	WeightApproachFit float64 `yaml:"weight_approach_fit"`
	WeightMaturity    float64 `yaml:"weight_maturity"`

	// ReducedPrecisionPenalty is subtracted from hardware_fit for candidates
	// that only fit via their reduced-precision variant.
	ReducedPrecisionPenalty float64 `yaml:"reduced_precision_penalty"`

	// Epsilon guards the closeness division when a candidate coincides with
	// both the ideal and anti-ideal solution (degenerate single-candidate
	// case, which then scores 0.5).
	Epsilon float64 `yaml:"-"`
}

// DefaultConfig returns the canonical weighting policy:
// content_similarity 0.40, hardware_fit 0.35, approach_fit 0.15,
// ecosystem_maturity 0.10.
func DefaultConfig() Config {
	return Config{
		WeightSimilarity:        0.40,
		WeightHardwareFit:       0.35,
		WeightApproachFit:       0.15,
		WeightMaturity:          0.10,
		ReducedPrecisionPenalty: 0.2,
		Epsilon:                 1e-10,
	}
}

// Validate checks that the weights form a proper convex combination.
func (c Config) Validate() error {
	sum := c.WeightSimilarity + c.WeightHardwareFit + c.WeightApproachFit + c.WeightMaturity
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("ranking weights must sum to 1.0, got %.4f", sum)
	}
	for _, w := range []float64{c.WeightSimilarity, c.WeightHardwareFit, c.WeightApproachFit, c.WeightMaturity} {
		if w < 0 {
			return fmt.Errorf("ranking weights must be >= 0")
		}
	}
	return nil
}

// Ranked wraps a scored candidate with its closeness score in [0,1] and its
// 1-based rank.
type Ranked struct {
	similarity.Scored
	HardwareFit    float64
	ApproachFit    float64
	ClosenessScore float64
	Rank           int
}

// approach_fit values. A user with no selected use case treats every modality
// as acceptable.
const (
	approachMatch    = 1.0
	approachMismatch = 0.25
)

// Rank builds the four-column decision matrix, vector-normalizes each column,
// applies the configured weights, and scores every candidate by closeness to
// the ideal solution. Ties are broken by candidate ID so the ordering is
// reproducible across catalog reloads.
//
// Known limitation, pinned by tests: adding or removing a candidate can shift
// the ideal/anti-ideal solutions and reorder the remaining candidates ("rank
// reversal"). This is a property of the method, not a bug.
func Rank(scored []similarity.Scored, hw *hardware.Snapshot, prefs factors.Preferences, cfg Config) ([]Ranked, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}

	n := len(scored)
	cols := [4][]float64{}
	for i := range cols {
		cols[i] = make([]float64, n)
	}

	out := make([]Ranked, n)
	for i, s := range scored {
		hwFit := hardwareFit(s, hw, cfg)
		appFit := approachFit(s.Entry.Modality, prefs.UseCase)
		out[i] = Ranked{Scored: s, HardwareFit: hwFit, ApproachFit: appFit}

		cols[0][i] = s.ContentSimilarity
		cols[1][i] = hwFit
		cols[2][i] = appFit
		cols[3][i] = s.Entry.EcosystemMaturity
	}

	weights := []float64{cfg.WeightSimilarity, cfg.WeightHardwareFit, cfg.WeightApproachFit, cfg.WeightMaturity}
	for c := range cols {
		normalizeColumn(cols[c])
		for i := range cols[c] {
			cols[c][i] *= weights[c]
		}
	}

	// Ideal and anti-ideal solutions. All four criteria are benefit criteria,
	// so the ideal is the per-column maximum.
	ideal, anti := make([]float64, 4), make([]float64, 4)
	for c := range cols {
		ideal[c], anti[c] = maxMin(cols[c])
	}

	for i := range out {
		var dIdeal, dAnti float64
		for c := range cols {
			dIdeal += (cols[c][i] - ideal[c]) * (cols[c][i] - ideal[c])
			dAnti += (cols[c][i] - anti[c]) * (cols[c][i] - anti[c])
		}
		dIdeal = math.Sqrt(dIdeal)
		dAnti = math.Sqrt(dAnti)
		if dIdeal+dAnti < cfg.Epsilon {
			// Candidate coincides with both solutions (e.g. a single
			// candidate); neither best nor worst, so score it 0.5.
			out[i].ClosenessScore = 0.5
			continue
		}
		out[i].ClosenessScore = dAnti / (dIdeal + dAnti + cfg.Epsilon)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].ClosenessScore != out[b].ClosenessScore {
			return out[a].ClosenessScore > out[b].ClosenessScore
		}
		return out[a].Entry.ID < out[b].Entry.ID
	})
	for i := range out {
		out[i].Rank = i + 1
	}

	return out, nil
}

// hardwareFit measures headroom: 1.0 minus how close the candidate sits to the
// VRAM/storage ceiling, with a fixed penalty for reduced-precision fallback.
func hardwareFit(s similarity.Scored, hw *hardware.Snapshot, cfg Config) float64 {
	var vramUtil, storageUtil float64
	if hw.EffectiveVRAMGB > 0 {
		vramUtil = s.Entry.MinVRAMGB / hw.EffectiveVRAMGB
	} else if s.Entry.MinVRAMGB > 0 {
		vramUtil = 1
	}
	usable := hw.FreeStorageGB * constraint.StorageSafetyFactor
	if usable > 0 {
		storageUtil = s.Entry.SizeGB / usable
	} else {
		storageUtil = 1
	}

	fit := 1 - math.Min(1, math.Max(vramUtil, storageUtil))
	if s.NeedsReducedPrecision {
		fit -= cfg.ReducedPrecisionPenalty
	}
	return math.Max(0, fit)
}

func approachFit(modality, useCase string) float64 {
	if useCase == "" || modality == useCase {
		return approachMatch
	}
	return approachMismatch
}

// normalizeColumn divides each entry by the column's Euclidean norm. An
// all-zero column is left untouched.
func normalizeColumn(col []float64) {
	var sumSq float64
	for _, v := range col {
		sumSq += v * v
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range col {
		col[i] /= norm
	}
}

func maxMin(values []float64) (float64, float64) {
	mx, mn := values[0], values[0]
	for _, v := range values[1:] {
		if v > mx {
			mx = v
		}
		if v < mn {
			mn = v
		}
	}
	return mx, mn
}
