package factors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateCandidate_GroupMeans(t *testing.T) {
	table := GroupingTable{
		FactorQuality: {"photorealism", "prompt_adherence"},
		FactorSpeed:   {"base_throughput"},
	}
	caps := map[string]float64{
		"photorealism":     0.9,
		"prompt_adherence": 0.7,
		"base_throughput":  0.5,
	}

	s := AggregateCandidate(caps, table)
	require.InDelta(t, 0.8, s.Quality, 1e-9)
	require.InDelta(t, 0.5, s.Speed, 1e-9)
}

func TestAggregateCandidate_MissingDimensionsSkipped(t *testing.T) {
	table := GroupingTable{
		FactorQuality: {"photorealism", "text_rendering", "anatomy_accuracy"},
	}
	// Only one of three dimensions present; the mean runs over present ones.
	s := AggregateCandidate(map[string]float64{"photorealism": 0.6}, table)
	require.InDelta(t, 0.6, s.Quality, 1e-9)
}

func TestAggregateCandidate_EmptyGroupScoresZero(t *testing.T) {
	s := AggregateCandidate(map[string]float64{}, DefaultGroupingTable())
	require.Zero(t, s.Quality)
	require.Zero(t, s.Speed)
	require.Zero(t, s.Control)
	require.Zero(t, s.Consistency)
	// Simplicity is inverted: nothing complex declared means maximally simple.
	require.Equal(t, 1.0, s.Simplicity)
}

func TestAggregateCandidate_SimplicityInverted(t *testing.T) {
	table := GroupingTable{
		FactorSimplicity: {"setup_dependency_count", "setup_vram_tuning"},
	}
	caps := map[string]float64{
		"setup_dependency_count": 0.8,
		"setup_vram_tuning":      0.6,
	}
	s := AggregateCandidate(caps, table)
	require.InDelta(t, 1-0.7, s.Simplicity, 1e-9)
}

func TestAggregateUser(t *testing.T) {
	w, err := AggregateUser(Weights{Quality: 1, Speed: 0.5, Control: 0, Consistency: 0.25, Simplicity: 0.75})
	require.NoError(t, err)
	require.Equal(t, 1.0, w.Quality)

	_, err = AggregateUser(Weights{Quality: 1.2})
	require.ErrorContains(t, err, "must be in [0,1]")

	_, err = AggregateUser(Weights{Speed: -0.1})
	require.Error(t, err)
}

func TestWeights_Vector_Order(t *testing.T) {
	w := Weights{Quality: 0.1, Speed: 0.2, Control: 0.3, Consistency: 0.4, Simplicity: 0.5}
	require.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, w.Vector())
	require.Len(t, w.Vector(), len(Order))
}

func TestGroupingTable_Merge(t *testing.T) {
	base := GroupingTable{
		FactorQuality: {"photorealism"},
	}
	merged := base.Merge(GroupingTable{
		FactorQuality: {"photorealism", "film_grain_rendering"},
		FactorSpeed:   {"base_throughput"},
	})

	require.Equal(t, []string{"photorealism", "film_grain_rendering"}, merged[FactorQuality])
	require.Equal(t, []string{"base_throughput"}, merged[FactorSpeed])
	// Receiver untouched.
	require.Equal(t, []string{"photorealism"}, base[FactorQuality])
	require.NotContains(t, base, FactorSpeed)
}

func TestGroupingTable_Dimensions(t *testing.T) {
	dims := DefaultGroupingTable().Dimensions()
	require.NotEmpty(t, dims)
	for i := 1; i < len(dims); i++ {
		if dims[i-1] >= dims[i] {
			t.Errorf("dimensions not sorted: %q >= %q", dims[i-1], dims[i])
		}
	}
	require.Contains(t, dims, "photorealism")
	require.Contains(t, dims, "setup_dependency_count")
}

func TestAggregateCandidate_Idempotent(t *testing.T) {
	table := DefaultGroupingTable()
	caps := map[string]float64{
		"photorealism":    0.9,
		"base_throughput": 0.4,
		"seed_stability":  0.7,
	}
	a := AggregateCandidate(caps, table)
	b := AggregateCandidate(caps, table)
	require.Equal(t, a, b)
	for _, v := range a.Vector() {
		require.False(t, math.IsNaN(v))
	}
}
