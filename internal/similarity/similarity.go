// Package similarity scores viable candidates by how well their factor scores
// align with the user's factor weights. The stage needs no history: it
// depends only on the current request and static catalog metadata, so it is
// cold-start safe.
package similarity

import (
	"math"

	"github.com/modelscout/modelscout/internal/constraint"
	"github.com/modelscout/modelscout/internal/factors"
)

// Style-tag bonus policy: each exact tag match adds 0.1, capped at 0.3, and
// the combined score is clamped back into [0,1].
const (
	tagBonusPerMatch = 0.1
	tagBonusCap      = 0.3
)

// Scored wraps a viable candidate with its content similarity in [0,1].
type Scored struct {
	constraint.Viable
	ContentSimilarity float64
}

// Score computes the content similarity for every viable candidate: cosine
// similarity between the user's factor weights and the candidate's cached
// factor scores, plus a bounded bonus for exact style-tag overlap.
func Score(viable []constraint.Viable, prefs factors.Preferences) []Scored {
	u := prefs.Weights.Vector()
	out := make([]Scored, 0, len(viable))
	for _, v := range viable {
		sim := Cosine(u, v.Entry.FactorScores.Vector())
		sim += tagBonus(prefs.StyleTags, v.Entry.StyleTags)
		out = append(out, Scored{
			Viable:            v,
			ContentSimilarity: clamp01(sim),
		})
	}
	return out
}

// Cosine returns the cosine similarity of two equal-length vectors. A zero
// magnitude on either side yields 0.0 rather than NaN.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func tagBonus(userTags, candidateTags []string) float64 {
	if len(userTags) == 0 || len(candidateTags) == 0 {
		return 0
	}
	set := make(map[string]bool, len(candidateTags))
	for _, t := range candidateTags {
		set[t] = true
	}
	// Set overlap: a tag the user repeats still counts once.
	matches := 0
	for _, t := range userTags {
		if set[t] {
			matches++
			delete(set, t)
		}
	}
	return math.Min(tagBonusCap, tagBonusPerMatch*float64(matches))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
