// Package catalog loads the static model catalog: one entry per installable
// model/quantization variant. The catalog is read once at process start,
// validated, enriched with cached factor scores, and never mutated afterwards,
// which makes it safe for unlimited concurrent readers.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/modelscout/modelscout/internal/factors"
	"github.com/modelscout/modelscout/internal/validation"
)

// Component is a supporting artifact the installer must fetch alongside the
// model weights (VAE, text encoder, upscaler, ...).
type Component struct {
	Name   string  `yaml:"name" json:"name"`
	URL    string  `yaml:"url,omitempty" json:"url,omitempty"`
	SHA256 string  `yaml:"sha256,omitempty" json:"sha256,omitempty"`
	SizeGB float64 `yaml:"size_gb,omitempty" json:"size_gb,omitempty"`
}

// Download holds the installer-facing metadata for an entry. The engine never
// touches the network; this block is passed through to the manifest builder.
type Download struct {
	URL        string      `yaml:"url" json:"url"`
	SHA256     string      `yaml:"sha256,omitempty" json:"sha256,omitempty"`
	Components []Component `yaml:"components,omitempty" json:"components,omitempty"`
}

// Entry is one installable artifact variant: a specific model at a specific
// precision/quantization. Entries are owned by the Catalog and referenced,
// never copied, by downstream stages.
type Entry struct {
	ID                   string             `yaml:"id" json:"id"`
	Family               string             `yaml:"family" json:"family"`
	DisplayName          string             `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	MinVRAMGB            float64            `yaml:"min_vram_gb" json:"min_vram_gb"`
	MinRAMGB             float64            `yaml:"min_ram_gb" json:"min_ram_gb"`
	SizeGB               float64            `yaml:"size_gb" json:"size_gb"`
	PlatformRestrictions []string           `yaml:"platform_restrictions,omitempty" json:"platform_restrictions,omitempty"`
	HasReducedPrecision  bool               `yaml:"reduced_precision,omitempty" json:"reduced_precision,omitempty"`
	QuantFormat          string             `yaml:"quant_format,omitempty" json:"quant_format,omitempty"`
	Capabilities         map[string]float64 `yaml:"capabilities" json:"capabilities"`
	StyleTags            []string           `yaml:"style_tags,omitempty" json:"style_tags,omitempty"`
	Modality             string             `yaml:"modality" json:"modality"`
	EcosystemMaturity    float64            `yaml:"ecosystem_maturity" json:"ecosystem_maturity"`
	Download             Download           `yaml:"download,omitempty" json:"download,omitempty"`

	// FactorScores is computed once at catalog load and cached for the
	// lifetime of the catalog.
	FactorScores factors.Scores `yaml:"-" json:"factor_scores"`
}

// RestrictedTo reports whether the entry is limited to specific platforms.
func (e *Entry) RestrictedTo() bool {
	return len(e.PlatformRestrictions) > 0
}

// AllowsPlatform reports whether the entry may run on the given platform.
// An empty restriction set means unrestricted.
func (e *Entry) AllowsPlatform(platform string) bool {
	if len(e.PlatformRestrictions) == 0 {
		return true
	}
	for _, p := range e.PlatformRestrictions {
		if p == platform {
			return true
		}
	}
	return false
}

// Validate checks structural invariants on a single entry. A failing entry is
// a catalog authoring error and aborts the load.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("entry id is required")
	}
	if strings.TrimSpace(e.Family) == "" {
		return fmt.Errorf("entry %s: family is required", e.ID)
	}
	if e.MinVRAMGB < 0 || e.MinRAMGB < 0 || e.SizeGB <= 0 {
		return fmt.Errorf("entry %s: resource requirements must be positive (vram=%.1f ram=%.1f size=%.1f)",
			e.ID, e.MinVRAMGB, e.MinRAMGB, e.SizeGB)
	}
	if e.EcosystemMaturity < 0 || e.EcosystemMaturity > 1 {
		return fmt.Errorf("entry %s: ecosystem_maturity must be in [0,1], got %.3f", e.ID, e.EcosystemMaturity)
	}
	for dim, v := range e.Capabilities {
		if v < 0 || v > 1 {
			return fmt.Errorf("entry %s: capability %s must be in [0,1], got %.3f", e.ID, dim, v)
		}
	}
	return nil
}

// file is the on-disk catalog document shape.
type file struct {
	Version       int               `yaml:"version"`
	Substitutions map[string]string `yaml:"substitutions,omitempty"`
	Entries       []*Entry          `yaml:"entries"`
}

// Catalog is the loaded, immutable candidate set.
type Catalog struct {
	entries       []*Entry
	byID          map[string]*Entry
	byFamily      map[string][]*Entry
	substitutions map[string]string
}

// Load reads, schema-validates, and indexes a catalog YAML file, then computes
// the cached factor scores for every entry in parallel. This is the only
// loading path; everything downstream treats the result as read-only.
func Load(path string, table factors.GroupingTable) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	if errs := validation.ValidateCatalogBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("catalog %s failed schema validation: %s", path, strings.Join(errs, "; "))
	}

	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	return build(&doc, table)
}

// New builds a catalog directly from entries, bypassing the file reader.
// Primarily used by tests and embedded catalogs.
func New(entries []*Entry, substitutions map[string]string, table factors.GroupingTable) (*Catalog, error) {
	return build(&file{Entries: entries, Substitutions: substitutions}, table)
}

func build(doc *file, table factors.GroupingTable) (*Catalog, error) {
	c := &Catalog{
		entries:       doc.Entries,
		byID:          make(map[string]*Entry, len(doc.Entries)),
		byFamily:      make(map[string][]*Entry),
		substitutions: doc.Substitutions,
	}

	for _, e := range doc.Entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog entry: %w", err)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog entry id %s", e.ID)
		}
		c.byID[e.ID] = e
		c.byFamily[e.Family] = append(c.byFamily[e.Family], e)
	}

	// Factor aggregation is independent per entry; fan out across cores.
	// This is load-time work only; the per-request path stays single-pass.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, e := range c.entries {
		g.Go(func() error {
			e.FactorScores = factors.AggregateCandidate(e.Capabilities, table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("catalog loaded",
		"entries", len(c.entries),
		"families", len(c.byFamily),
		"substitutions", len(c.substitutions))

	return c, nil
}

// Entries returns all catalog entries in file order.
func (c *Catalog) Entries() []*Entry {
	return c.entries
}

// Entry looks up a single entry by id.
func (c *Catalog) Entry(id string) (*Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Family returns all entries belonging to a model family.
func (c *Catalog) Family(name string) []*Entry {
	return c.byFamily[name]
}

// Substitute returns the lower-resource sibling family for the given family,
// if the catalog's substitution table names one.
func (c *Catalog) Substitute(family string) (string, bool) {
	sub, ok := c.substitutions[family]
	return sub, ok
}

// Families returns the sorted family names present in the catalog.
func (c *Catalog) Families() []string {
	out := make([]string, 0, len(c.byFamily))
	for f := range c.byFamily {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
