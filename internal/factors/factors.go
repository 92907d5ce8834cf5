// Package factors compresses the catalog's fine-grained capability dimensions
// and the user's onboarding answers into a shared five-factor preference space:
// quality, speed, control, consistency, simplicity.
package factors

import (
	"fmt"
	"sort"
)

// Factor names the five aggregated preference dimensions.
type Factor string

const (
	FactorQuality     Factor = "quality"
	FactorSpeed       Factor = "speed"
	FactorControl     Factor = "control"
	FactorConsistency Factor = "consistency"
	FactorSimplicity  Factor = "simplicity"
)

// Order is the canonical factor ordering used for vector math. Every vector
// produced by this package lays out its components in this order.
var Order = []Factor{
	FactorQuality,
	FactorSpeed,
	FactorControl,
	FactorConsistency,
	FactorSimplicity,
}

// GroupingTable maps each factor to the capability dimensions averaged into it.
// The table is configuration data: DefaultGroupingTable ships a documented
// baseline and project config may extend groups with additional dimensions.
// The simplicity group is special-cased: its dimensions measure setup
// complexity, so the factor is 1 - mean(group).
type GroupingTable map[Factor][]string

// DefaultGroupingTable returns the baseline dimension-to-factor grouping.
// Dimensions absent from a candidate's capability map contribute nothing
// (the mean runs over present dimensions only).
func DefaultGroupingTable() GroupingTable {
	return GroupingTable{
		FactorQuality: {
			"photorealism",
			"stylization_fidelity",
			"prompt_adherence",
			"text_rendering",
			"anatomy_accuracy",
			"detail_density",
			"color_grading",
			"composition_balance",
		},
		FactorSpeed: {
			"base_throughput",
			"low_step_quality",
			"distilled_speedup",
			"batch_scaling",
			"warm_start_latency",
			"tiled_decode_efficiency",
		},
		FactorControl: {
			"controlnet_support",
			"ipadapter_support",
			"inpainting_quality",
			"outpainting_quality",
			"pose_control",
			"depth_conditioning",
			"regional_prompting",
			"lora_ecosystem",
		},
		FactorConsistency: {
			"seed_stability",
			"style_consistency",
			"character_consistency",
			"multi_image_coherence",
			"upscale_stability",
			"negative_prompt_response",
		},
		FactorSimplicity: {
			"setup_dependency_count",
			"setup_vram_tuning",
			"setup_config_surface",
			"setup_addon_requirements",
			"setup_prompt_expertise",
			"setup_maintenance_burden",
		},
	}
}

// Merge overlays extension groups onto the table, appending any dimensions not
// already present. The receiver is not modified.
func (t GroupingTable) Merge(ext GroupingTable) GroupingTable {
	out := make(GroupingTable, len(t))
	for f, dims := range t {
		out[f] = append([]string(nil), dims...)
	}
	for f, dims := range ext {
		existing := make(map[string]bool, len(out[f]))
		for _, d := range out[f] {
			existing[d] = true
		}
		for _, d := range dims {
			if !existing[d] {
				out[f] = append(out[f], d)
			}
		}
	}
	return out
}

// Dimensions returns the sorted union of all dimensions named by the table.
func (t GroupingTable) Dimensions() []string {
	seen := make(map[string]bool)
	for _, dims := range t {
		for _, d := range dims {
			seen[d] = true
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Weights holds the user-side factor values, each in [0,1].
type Weights struct {
	Quality     float64 `yaml:"quality" json:"quality"`
	Speed       float64 `yaml:"speed" json:"speed"`
	Control     float64 `yaml:"control" json:"control"`
	Consistency float64 `yaml:"consistency" json:"consistency"`
	Simplicity  float64 `yaml:"simplicity" json:"simplicity"`
}

// Scores holds the candidate-side factor values in the same space.
type Scores struct {
	Quality     float64 `yaml:"quality" json:"quality"`
	Speed       float64 `yaml:"speed" json:"speed"`
	Control     float64 `yaml:"control" json:"control"`
	Consistency float64 `yaml:"consistency" json:"consistency"`
	Simplicity  float64 `yaml:"simplicity" json:"simplicity"`
}

// Vector returns the weights laid out in the canonical factor Order.
func (w Weights) Vector() []float64 {
	return []float64{w.Quality, w.Speed, w.Control, w.Consistency, w.Simplicity}
}

// Vector returns the scores laid out in the canonical factor Order.
func (s Scores) Vector() []float64 {
	return []float64{s.Quality, s.Speed, s.Control, s.Consistency, s.Simplicity}
}

// Validate checks that every weight is inside [0,1].
func (w Weights) Validate() error {
	for i, v := range w.Vector() {
		if v < 0 || v > 1 {
			return fmt.Errorf("factor %s must be in [0,1], got %.3f", Order[i], v)
		}
	}
	return nil
}

// Preferences is the full user-side input to a recommendation request: the
// factor weights plus the style tags and primary use case selected during
// onboarding.
type Preferences struct {
	Weights   Weights  `yaml:"weights" json:"weights"`
	StyleTags []string `yaml:"style_tags,omitempty" json:"style_tags,omitempty"`
	UseCase   string   `yaml:"use_case,omitempty" json:"use_case,omitempty"`
}

// AggregateCandidate compresses a candidate's raw capability dimensions into
// factor scores by averaging each group from the table. The simplicity group
// is inverted: its dimensions measure setup complexity, so a high mean means a
// low simplicity score. Dimensions missing from caps are skipped; an entirely
// absent group scores 0 (or 1 for simplicity, i.e. nothing complex declared).
func AggregateCandidate(caps map[string]float64, table GroupingTable) Scores {
	get := func(f Factor) float64 {
		dims := table[f]
		sum, n := 0.0, 0
		for _, d := range dims {
			v, ok := caps[d]
			if !ok {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	}

	s := Scores{
		Quality:     get(FactorQuality),
		Speed:       get(FactorSpeed),
		Control:     get(FactorControl),
		Consistency: get(FactorConsistency),
		Simplicity:  1 - get(FactorSimplicity),
	}
	return s
}

// AggregateUser validates the five raw onboarding answers and returns them as
// factor weights. Out-of-range answers are a caller error, not a business
// outcome.
func AggregateUser(answers Weights) (Weights, error) {
	if err := answers.Validate(); err != nil {
		return Weights{}, err
	}
	return answers, nil
}
