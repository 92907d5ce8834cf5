package factors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresets_SortedAndValid(t *testing.T) {
	ps := Presets()
	require.NotEmpty(t, ps)
	for i, p := range ps {
		require.NoError(t, p.Weights.Validate(), "preset %s has out-of-range weights", p.Name)
		if i > 0 && ps[i-1].Name >= p.Name {
			t.Errorf("presets not sorted: %q >= %q", ps[i-1].Name, p.Name)
		}
	}
}

func TestLookupPreset(t *testing.T) {
	p, err := LookupPreset("photorealism")
	require.NoError(t, err)
	require.Equal(t, 1.0, p.Weights.Quality)
	require.Contains(t, p.StyleTags, "photorealistic")

	_, err = LookupPreset("nope")
	require.ErrorContains(t, err, `unknown preset "nope"`)
	require.ErrorContains(t, err, "available presets")
}

func TestApplyOverrides(t *testing.T) {
	base := Weights{Quality: 0.6, Speed: 0.6, Control: 0.2, Consistency: 0.5, Simplicity: 1.0}

	got, err := ApplyOverrides(base, map[string]any{"quality": 0.9, "simplicity": 0.0})
	require.NoError(t, err)
	require.Equal(t, 0.9, got.Quality)
	require.Equal(t, 0.0, got.Simplicity)
	require.Equal(t, 0.6, got.Speed) // untouched

	// Strings decode too; this is how --set flag values arrive.
	got, err = ApplyOverrides(base, map[string]any{"speed": "0.25"})
	require.NoError(t, err)
	require.Equal(t, 0.25, got.Speed)
}

func TestApplyOverrides_Errors(t *testing.T) {
	base := Weights{Quality: 0.5}

	_, err := ApplyOverrides(base, map[string]any{"qualty": 0.9})
	require.Error(t, err, "typo'd factor name must fail loudly")

	_, err = ApplyOverrides(base, map[string]any{"quality": 1.5})
	require.ErrorContains(t, err, "must be in [0,1]")

	_, err = ApplyOverrides(base, map[string]any{"quality": "not-a-number"})
	require.Error(t, err)
}
