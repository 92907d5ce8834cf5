// Package hardware defines the immutable hardware snapshot the recommendation
// engine consumes. Snapshots are produced by an external detection component;
// this package only parses, validates, and exposes them. No probing happens here.
package hardware

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Platform is the closed set of operating systems the catalog targets.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMac     Platform = "mac"
	PlatformLinux   Platform = "linux"
)

// ParsePlatform converts a raw string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformWindows, PlatformMac, PlatformLinux:
		return Platform(s), nil
	default:
		return "", fmt.Errorf("unknown platform %q: must be windows, mac, or linux", s)
	}
}

// GPUVendor identifies the GPU driver stack, which constrains the usable
// quantization formats.
type GPUVendor string

const (
	VendorNvidia GPUVendor = "nvidia"
	VendorAMD    GPUVendor = "amd"
	VendorApple  GPUVendor = "apple"
	VendorIntel  GPUVendor = "intel"
	VendorNone   GPUVendor = "none"
)

// Snapshot is the platform-adjusted hardware profile for one recommendation
// request. EffectiveVRAMGB already includes any unified-memory ceiling applied
// by the detector (e.g. a 24GB Apple Silicon machine reports 18 after the 0.75
// ceiling). Snapshots are never mutated after creation.
type Snapshot struct {
	EffectiveVRAMGB  float64   `yaml:"effective_vram_gb"`
	RAMGB            float64   `yaml:"ram_gb"`
	FreeStorageGB    float64   `yaml:"free_storage_gb"`
	Platform         Platform  `yaml:"platform"`
	GPUVendor        GPUVendor `yaml:"gpu_vendor"`
	QuantFormats     []string  `yaml:"allowed_quantization_formats,omitempty"`
	CPUOffloadViable bool      `yaml:"cpu_offload_viable"`
}

// defaultQuantFormats maps platform+vendor to the quantization formats the
// runtime stack can load. Unified-memory GPUs (Apple) only permit the
// non-grouped GGUF subset; grouped quantizations need CUDA-style kernels.
var defaultQuantFormats = map[Platform]map[GPUVendor][]string{
	PlatformWindows: {
		VendorNvidia: {"fp16", "fp8", "gguf-q8", "gguf-q6k", "gguf-q4km", "nf4"},
		VendorAMD:    {"fp16", "gguf-q8", "gguf-q4km"},
		VendorIntel:  {"fp16", "gguf-q8"},
		VendorNone:   {"gguf-q4km"},
	},
	PlatformLinux: {
		VendorNvidia: {"fp16", "fp8", "gguf-q8", "gguf-q6k", "gguf-q4km", "nf4"},
		VendorAMD:    {"fp16", "gguf-q8", "gguf-q4km"},
		VendorIntel:  {"fp16", "gguf-q8"},
		VendorNone:   {"gguf-q4km"},
	},
	PlatformMac: {
		VendorApple: {"fp16", "gguf-q8", "gguf-q6k"},
		VendorNone:  {"gguf-q8"},
	},
}

// DefaultQuantFormats returns the quantization allowlist for a platform and
// GPU vendor. Returns nil for combinations with no supported runtime.
func DefaultQuantFormats(p Platform, v GPUVendor) []string {
	byVendor, ok := defaultQuantFormats[p]
	if !ok {
		return nil
	}
	return byVendor[v]
}

// AllowsQuant reports whether the snapshot's quantization allowlist contains
// the given format.
func (s *Snapshot) AllowsQuant(format string) bool {
	for _, f := range s.QuantFormats {
		if f == format {
			return true
		}
	}
	return false
}

// AllowsReducedPrecision reports whether any reduced-precision format can run
// on this hardware at all.
func (s *Snapshot) AllowsReducedPrecision() bool {
	return len(s.QuantFormats) > 0
}

// Validate checks field ranges. A snapshot that fails validation is a
// programmer/detector error, not a business outcome.
func (s *Snapshot) Validate() error {
	if _, err := ParsePlatform(string(s.Platform)); err != nil {
		return err
	}
	if s.EffectiveVRAMGB < 0 {
		return fmt.Errorf("effective_vram_gb must be >= 0, got %.1f", s.EffectiveVRAMGB)
	}
	if s.RAMGB <= 0 {
		return fmt.Errorf("ram_gb must be > 0, got %.1f", s.RAMGB)
	}
	if s.FreeStorageGB < 0 {
		return fmt.Errorf("free_storage_gb must be >= 0, got %.1f", s.FreeStorageGB)
	}
	return nil
}

// Load reads a snapshot YAML file written by the hardware detector. When the
// detector omitted the quantization allowlist, the platform default table
// fills it in.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hardware snapshot: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing hardware snapshot: %w", err)
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hardware snapshot: %w", err)
	}

	if snap.QuantFormats == nil {
		snap.QuantFormats = DefaultQuantFormats(snap.Platform, snap.GPUVendor)
	}

	return &snap, nil
}
