// Package projectconfig provides the ProjectConfig struct and loader for
// .modelscout.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/modelscout/modelscout/internal/factors"
	"github.com/modelscout/modelscout/internal/ranking"
)

// Default values for project configuration. These are the single source of
// truth: New() references them and no other code should duplicate them.
const (
	DefaultCatalogPath  = "catalog.yaml"
	DefaultHardwarePath = "hardware.yaml"
	DefaultPreset       = "beginner"
	DefaultTopN         = 5
	DefaultFormat       = "table"
)

// PathsConfig holds input file locations.
type PathsConfig struct {
	Catalog  string `yaml:"catalog,omitempty"`
	Hardware string `yaml:"hardware,omitempty"`
}

// OutputConfig holds rendering defaults.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
	TopN   int    `yaml:"top,omitempty"`
}

// RankingConfig carries ranking weight overrides. Pointer fields distinguish
// "not set" from an explicit zero.
type RankingConfig struct {
	WeightSimilarity  *float64 `yaml:"weight_similarity,omitempty"`
	WeightHardwareFit *float64 `yaml:"weight_hardware_fit,omitempty"`
	WeightApproachFit *float64 `yaml:"weight_approach_fit,omitempty"`
	WeightMaturity    *float64 `yaml:"weight_maturity,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .modelscout.yaml.
type ProjectConfig struct {
	Paths   PathsConfig           `yaml:"paths,omitempty"`
	Preset  string                `yaml:"preset,omitempty"`
	Output  OutputConfig          `yaml:"output,omitempty"`
	Ranking RankingConfig         `yaml:"ranking,omitempty"`
	Factors factors.GroupingTable `yaml:"factor_groups,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Catalog:  DefaultCatalogPath,
			Hardware: DefaultHardwarePath,
		},
		Preset: DefaultPreset,
		Output: OutputConfig{
			Format: DefaultFormat,
			TopN:   DefaultTopN,
		},
	}
}

// Load finds .modelscout.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading .modelscout.yaml: %w", err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .modelscout.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// RankingPolicy overlays the config's weight overrides onto the canonical
// ranking policy and validates the result.
func (c *ProjectConfig) RankingPolicy() (ranking.Config, error) {
	rc := ranking.DefaultConfig()
	if c.Ranking.WeightSimilarity != nil {
		rc.WeightSimilarity = *c.Ranking.WeightSimilarity
	}
	if c.Ranking.WeightHardwareFit != nil {
		rc.WeightHardwareFit = *c.Ranking.WeightHardwareFit
	}
	if c.Ranking.WeightApproachFit != nil {
		rc.WeightApproachFit = *c.Ranking.WeightApproachFit
	}
	if c.Ranking.WeightMaturity != nil {
		rc.WeightMaturity = *c.Ranking.WeightMaturity
	}
	if err := rc.Validate(); err != nil {
		return ranking.Config{}, fmt.Errorf("invalid ranking weights in .modelscout.yaml: %w", err)
	}
	return rc, nil
}

// GroupingTable merges any factor-group extensions from the config onto the
// default dimension-to-factor table.
func (c *ProjectConfig) GroupingTable() factors.GroupingTable {
	table := factors.DefaultGroupingTable()
	if len(c.Factors) == 0 {
		return table
	}
	return table.Merge(c.Factors)
}

// findConfigFile walks up from dir looking for .modelscout.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates real
// I/O errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".modelscout.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Paths.Catalog != "" {
		dst.Paths.Catalog = src.Paths.Catalog
	}
	if src.Paths.Hardware != "" {
		dst.Paths.Hardware = src.Paths.Hardware
	}
	if src.Preset != "" {
		dst.Preset = src.Preset
	}
	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}
	if src.Output.TopN != 0 {
		dst.Output.TopN = src.Output.TopN
	}
	if src.Ranking.WeightSimilarity != nil {
		dst.Ranking.WeightSimilarity = src.Ranking.WeightSimilarity
	}
	if src.Ranking.WeightHardwareFit != nil {
		dst.Ranking.WeightHardwareFit = src.Ranking.WeightHardwareFit
	}
	if src.Ranking.WeightApproachFit != nil {
		dst.Ranking.WeightApproachFit = src.Ranking.WeightApproachFit
	}
	if src.Ranking.WeightMaturity != nil {
		dst.Ranking.WeightMaturity = src.Ranking.WeightMaturity
	}
	if len(src.Factors) > 0 {
		dst.Factors = src.Factors
	}
}
