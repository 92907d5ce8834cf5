// Package cascade implements the resolution cascade: an ordered sequence of
// constraint-relaxation strategies attempted only when no candidate survives
// strict filtering. Each strategy is independent and idempotent; none of them
// mutates the catalog.
package cascade

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/modelscout/modelscout/internal/catalog"
	"github.com/modelscout/modelscout/internal/constraint"
	"github.com/modelscout/modelscout/internal/hardware"
)

// Strategy names the relaxation that produced a non-empty viable set.
type Strategy string

const (
	StrategyQuantDowngrade   Strategy = "quantization_downgrade"
	StrategySubstitution     Strategy = "variant_substitution"
	StrategyWorkflowOptimize Strategy = "workflow_optimization"
	StrategyCloudOffload     Strategy = "cloud_offload_suggested"
)

// nearMissTolerance is how far past a vram/storage ceiling a candidate may sit
// and still be flagged "viable with reduced batch/tiled processing".
const nearMissTolerance = 1.10

// Outcome is the result of running the cascade.
type Outcome struct {
	Strategy Strategy
	Viable   []constraint.Viable
	// Explanation is set for the cloud-offload terminal case and names the
	// unmet constraint and its magnitude.
	Explanation string
}

// Resolve walks the relaxation strategies in fixed order until one yields a
// non-empty viable set. When every strategy is exhausted it returns the
// cloud-offload outcome with an empty viable set, never an error.
func Resolve(cat *catalog.Catalog, hw *hardware.Snapshot, rejections []constraint.Rejection) Outcome {
	if v := quantDowngrade(cat, hw, rejections); len(v) > 0 {
		slog.Debug("cascade resolved", "strategy", StrategyQuantDowngrade, "viable", len(v))
		return Outcome{Strategy: StrategyQuantDowngrade, Viable: v}
	}
	if v := substitute(cat, hw, rejections); len(v) > 0 {
		slog.Debug("cascade resolved", "strategy", StrategySubstitution, "viable", len(v))
		return Outcome{Strategy: StrategySubstitution, Viable: v}
	}
	if v := workflowOptimize(cat, hw, rejections); len(v) > 0 {
		slog.Debug("cascade resolved", "strategy", StrategyWorkflowOptimize, "viable", len(v))
		return Outcome{Strategy: StrategyWorkflowOptimize, Viable: v}
	}
	explanation := cloudOffloadExplanation(rejections)
	if hw.CPUOffloadViable {
		explanation += "; CPU offload may also work at greatly reduced speed"
	}
	return Outcome{
		Strategy:    StrategyCloudOffload,
		Explanation: explanation,
	}
}

// quantDowngrade retries the rejected candidates with the quantization
// allowlist relaxed, letting reduced-precision variants through. Survivors
// keep the quality-impact note the filter attaches.
func quantDowngrade(cat *catalog.Catalog, hw *hardware.Snapshot, rejections []constraint.Rejection) []constraint.Viable {
	viable, _ := constraint.FilterWith(rejectedEntries(cat, rejections), hw, constraint.Options{IgnoreQuantAllowlist: true})
	return viable
}

func rejectedEntries(cat *catalog.Catalog, rejections []constraint.Rejection) []*catalog.Entry {
	out := make([]*catalog.Entry, 0, len(rejections))
	for _, rej := range rejections {
		if e, ok := cat.Entry(rej.CandidateID); ok {
			out = append(out, e)
		}
	}
	return out
}

// substitute maps each rejected candidate's family through the catalog's
// substitution table to a lower-resource sibling family and retries the strict
// filter on those substitutes.
func substitute(cat *catalog.Catalog, hw *hardware.Snapshot, rejections []constraint.Rejection) []constraint.Viable {
	var substitutes []*catalog.Entry
	seen := make(map[string]bool)
	for _, rej := range rejections {
		entry, ok := cat.Entry(rej.CandidateID)
		if !ok {
			continue
		}
		sibling, ok := cat.Substitute(entry.Family)
		if !ok {
			continue
		}
		for _, sub := range cat.Family(sibling) {
			if seen[sub.ID] {
				continue
			}
			seen[sub.ID] = true
			substitutes = append(substitutes, sub)
		}
	}

	viable, _ := constraint.Filter(substitutes, hw)
	for i, v := range viable {
		viable[i].Note = joinNote(v.Note, fmt.Sprintf("substituted from the %s family", familyOfOriginal(cat, v.Entry, rejections)))
	}
	return viable
}

// workflowOptimize rescues near-misses: candidates whose vram or storage
// shortfall is within the fixed tolerance become viable with a reduced
// batch / tiled processing note instead of staying rejected. The candidates
// go back through the full filter with only those two ceilings relaxed, so a
// near-miss still has to clear the ram and platform checks its original
// rejection short-circuited before.
func workflowOptimize(cat *catalog.Catalog, hw *hardware.Snapshot, rejections []constraint.Rejection) []constraint.Viable {
	var nearMisses []*catalog.Entry
	for _, rej := range rejections {
		if rej.Constraint != constraint.ConstraintVRAM && rej.Constraint != constraint.ConstraintStorage {
			continue
		}
		if entry, ok := cat.Entry(rej.CandidateID); ok {
			nearMisses = append(nearMisses, entry)
		}
	}

	viable, _ := constraint.FilterWith(nearMisses, hw, constraint.Options{ResourceTolerance: nearMissTolerance})
	for i, v := range viable {
		viable[i].Note = joinNote(v.Note, "viable with reduced batch/tiled processing")
	}
	return viable
}

// cloudOffloadExplanation names the nearest-miss constraint and its magnitude
// so the caller can render a concrete explanation.
func cloudOffloadExplanation(rejections []constraint.Rejection) string {
	if len(rejections) == 0 {
		return "no candidates exist in the catalog for this request"
	}

	// Pick the rejection with the smallest relative shortfall, the closest
	// the hardware came to running anything.
	best := rejections[0]
	bestRatio := shortfallRatio(best)
	for _, rej := range rejections[1:] {
		if r := shortfallRatio(rej); r < bestRatio {
			best, bestRatio = rej, r
		}
	}

	if best.Required > 0 && best.Available >= 0 {
		return fmt.Sprintf(
			"no local candidate is viable: the closest miss (%s) needs %.1f GB %s but only %.1f GB is available (%.0f%% short); consider a hosted/cloud backend",
			best.CandidateID, best.Required, best.Constraint, best.Available, (bestRatio-1)*100)
	}
	return fmt.Sprintf("no local candidate is viable: %s; consider a hosted/cloud backend", best.Message)
}

func shortfallRatio(rej constraint.Rejection) float64 {
	if rej.Available <= 0 || rej.Required <= 0 {
		return 1e9
	}
	return rej.Required / rej.Available
}

func familyOfOriginal(cat *catalog.Catalog, sub *catalog.Entry, rejections []constraint.Rejection) string {
	// Report the first rejected family whose substitute family contains sub.
	families := make([]string, 0, len(rejections))
	seen := make(map[string]bool)
	for _, rej := range rejections {
		entry, ok := cat.Entry(rej.CandidateID)
		if !ok || seen[entry.Family] {
			continue
		}
		seen[entry.Family] = true
		families = append(families, entry.Family)
	}
	sort.Strings(families)
	for _, fam := range families {
		if sibling, ok := cat.Substitute(fam); ok && sibling == sub.Family {
			return fam
		}
	}
	return "requested"
}

func joinNote(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "; " + extra
}
