// Package manifest turns a chosen ranked candidate into an ordered
// download/install plan for the external installer. The engine still performs
// no network I/O; the manifest is data handed to a separate component.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modelscout/modelscout/internal/hardware"
	"github.com/modelscout/modelscout/internal/ranking"
)

// StepKind distinguishes manifest step types for the installer.
type StepKind string

const (
	StepDownload StepKind = "download"
	StepVerify   StepKind = "verify"
	StepPlace    StepKind = "place"
)

// Step is one unit of installer work. Steps are ordered; the installer
// executes them sequentially.
type Step struct {
	Kind      StepKind `yaml:"kind"`
	Name      string   `yaml:"name"`
	URL       string   `yaml:"url,omitempty"`
	SHA256    string   `yaml:"sha256,omitempty"`
	SizeGB    float64  `yaml:"size_gb,omitempty"`
	TargetDir string   `yaml:"target_dir,omitempty"`
}

// Manifest is the full install plan for one candidate.
type Manifest struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	CandidateID string    `yaml:"candidate_id"`
	DisplayName string    `yaml:"display_name,omitempty"`
	Platform    string    `yaml:"platform"`
	TotalSizeGB float64   `yaml:"total_size_gb"`
	Steps       []Step    `yaml:"steps"`
	Notes       []string  `yaml:"notes,omitempty"`
}

// modelsDir is where the installer places model weights, relative to its
// install root.
const modelsDir = "models"

// Build assembles the install plan for a ranked candidate: model weights
// first, then each supporting component, each followed by a verify step when
// a checksum is known.
func Build(rc *ranking.Ranked, hw *hardware.Snapshot) (*Manifest, error) {
	entry := rc.Entry
	if entry.Download.URL == "" {
		return nil, fmt.Errorf("catalog entry %s has no download metadata", entry.ID)
	}

	m := &Manifest{
		GeneratedAt: time.Now().UTC(),
		CandidateID: entry.ID,
		DisplayName: entry.DisplayName,
		Platform:    string(hw.Platform),
		TotalSizeGB: entry.SizeGB,
	}

	m.Steps = append(m.Steps, Step{
		Kind:      StepDownload,
		Name:      entry.ID,
		URL:       entry.Download.URL,
		SHA256:    entry.Download.SHA256,
		SizeGB:    entry.SizeGB,
		TargetDir: path.Join(modelsDir, entry.Family),
	})
	if entry.Download.SHA256 != "" {
		m.Steps = append(m.Steps, Step{Kind: StepVerify, Name: entry.ID, SHA256: entry.Download.SHA256})
	}

	for _, comp := range entry.Download.Components {
		m.Steps = append(m.Steps, Step{
			Kind:      StepDownload,
			Name:      comp.Name,
			URL:       comp.URL,
			SHA256:    comp.SHA256,
			SizeGB:    comp.SizeGB,
			TargetDir: path.Join(modelsDir, entry.Family, "components"),
		})
		if comp.SHA256 != "" {
			m.Steps = append(m.Steps, Step{Kind: StepVerify, Name: comp.Name, SHA256: comp.SHA256})
		}
		m.TotalSizeGB += comp.SizeGB
	}

	m.Steps = append(m.Steps, Step{
		Kind:      StepPlace,
		Name:      entry.ID,
		TargetDir: path.Join(modelsDir, entry.Family),
	})

	if rc.Note != "" {
		m.Notes = append(m.Notes, rc.Note)
	}
	if rc.NeedsReducedPrecision {
		m.Notes = append(m.Notes, "install the reduced-precision variant weights")
	}

	return m, nil
}

// Encode writes the manifest as YAML.
func (m *Manifest) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the manifest YAML to path.
func (m *Manifest) WriteFile(p string) error {
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("creating manifest file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := m.Encode(f); err != nil {
		return err
	}
	return nil
}
