package projectconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelscout/modelscout/internal/factors"
)

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultCatalogPath, cfg.Paths.Catalog)
	require.Equal(t, DefaultHardwarePath, cfg.Paths.Hardware)
	require.Equal(t, DefaultPreset, cfg.Preset)
	require.Equal(t, DefaultTopN, cfg.Output.TopN)
	require.Equal(t, DefaultFormat, cfg.Output.Format)
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
paths:
  catalog: data/models.yaml
preset: photorealism
output:
  top: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".modelscout.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "data/models.yaml", cfg.Paths.Catalog)
	require.Equal(t, DefaultHardwarePath, cfg.Paths.Hardware) // untouched
	require.Equal(t, "photorealism", cfg.Preset)
	require.Equal(t, 3, cfg.Output.TopN)
	require.Equal(t, DefaultFormat, cfg.Output.Format)
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".modelscout.yaml"), []byte("preset: anime\n"), 0o644))

	cfg, err := Load(nested)
	require.NoError(t, err)
	require.Equal(t, "anime", cfg.Preset)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".modelscout.yaml"), []byte("preset: [unclosed"), 0o644))

	_, err := Load(dir)
	require.ErrorContains(t, err, "parsing .modelscout.yaml")
}

func TestRankingPolicy_Defaults(t *testing.T) {
	rc, err := New().RankingPolicy()
	require.NoError(t, err)
	require.Equal(t, 0.40, rc.WeightSimilarity)
	require.Equal(t, 0.35, rc.WeightHardwareFit)
	require.Equal(t, 0.15, rc.WeightApproachFit)
	require.Equal(t, 0.10, rc.WeightMaturity)
}

func TestRankingPolicy_Overrides(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	cfg := New()
	cfg.Ranking = RankingConfig{
		WeightSimilarity:  f(0.5),
		WeightHardwareFit: f(0.3),
		WeightApproachFit: f(0.1),
		WeightMaturity:    f(0.1),
	}
	rc, err := cfg.RankingPolicy()
	require.NoError(t, err)
	require.Equal(t, 0.5, rc.WeightSimilarity)

	// Overrides that break the convex combination are rejected.
	cfg.Ranking.WeightSimilarity = f(0.9)
	_, err = cfg.RankingPolicy()
	require.ErrorContains(t, err, "invalid ranking weights")
}

func TestGroupingTable_MergesExtensions(t *testing.T) {
	cfg := New()
	require.Equal(t, factors.DefaultGroupingTable(), cfg.GroupingTable())

	cfg.Factors = factors.GroupingTable{
		factors.FactorQuality: {"film_grain_rendering"},
	}
	table := cfg.GroupingTable()
	require.Contains(t, table[factors.FactorQuality], "film_grain_rendering")
	require.Contains(t, table[factors.FactorQuality], "photorealism")
}
