// Package constraint implements the hard-constraint elimination stage: any
// candidate whose resource requirements exceed the hardware snapshot is
// rejected before preference-based scoring happens. Rejection is an expected
// per-candidate outcome, recorded as data and never returned as an error.
package constraint

import (
	"fmt"

	"github.com/modelscout/modelscout/internal/catalog"
	"github.com/modelscout/modelscout/internal/hardware"
)

// StorageSafetyFactor reserves 20% of free storage for workspace and temp
// files; a candidate only fits if its size stays inside the remaining 80%.
const StorageSafetyFactor = 0.8

// Constraint names the hard limit that eliminated a candidate.
type Constraint string

const (
	ConstraintVRAM     Constraint = "vram"
	ConstraintRAM      Constraint = "ram"
	ConstraintStorage  Constraint = "storage"
	ConstraintPlatform Constraint = "platform"
)

// Rejection records why a single candidate was eliminated. Only the first
// failing check is recorded; checks run in fixed order and short-circuit.
type Rejection struct {
	CandidateID string     `json:"candidate_id"`
	Constraint  Constraint `json:"constraint"`
	Required    float64    `json:"required"`
	Available   float64    `json:"available"`
	Message     string     `json:"message"`
}

// Viable wraps a surviving entry together with how it survived: entries that
// clear the VRAM check only via their reduced-precision variant carry a
// quality-impact note for the user.
type Viable struct {
	Entry                 *catalog.Entry
	NeedsReducedPrecision bool
	Note                  string
}

// Options relaxes individual checks. The zero value is the strict filter; the
// resolution cascade sets fields to retry with loosened rules.
type Options struct {
	// IgnoreQuantAllowlist lets any reduced-precision candidate pass the VRAM
	// fallback even when the platform's quantization allowlist is empty.
	// Survivors admitted this way carry a quality-impact note.
	IgnoreQuantAllowlist bool

	// ResourceTolerance multiplies the vram and storage ceilings (1.10 admits
	// candidates up to 10% over). Values at or below 1 mean strict. The ram
	// and platform checks are never relaxed.
	ResourceTolerance float64
}

// Filter evaluates every candidate against the snapshot with strict rules.
// Pure function: O(n) in candidate count, deterministic for identical inputs.
func Filter(entries []*catalog.Entry, hw *hardware.Snapshot) (viable []Viable, rejections []Rejection) {
	return FilterWith(entries, hw, Options{})
}

// FilterWith is Filter with relaxation options. Checks run in fixed order
// (vram, ram, storage, platform) and the first failure eliminates the
// candidate.
func FilterWith(entries []*catalog.Entry, hw *hardware.Snapshot, opts Options) (viable []Viable, rejections []Rejection) {
	for _, e := range entries {
		v, rej := check(e, hw, opts)
		if rej != nil {
			rejections = append(rejections, *rej)
			continue
		}
		viable = append(viable, v)
	}
	return viable, rejections
}

func check(e *catalog.Entry, hw *hardware.Snapshot, opts Options) (Viable, *Rejection) {
	v := Viable{Entry: e}

	tol := opts.ResourceTolerance
	if tol < 1 {
		tol = 1
	}

	// 1. VRAM. A candidate over the ceiling survives only through its
	// reduced-precision variant, and only when the platform can load one.
	effVRAM := hw.EffectiveVRAMGB * tol
	if e.MinVRAMGB > effVRAM {
		quantOK := hw.AllowsReducedPrecision() || opts.IgnoreQuantAllowlist
		if !e.HasReducedPrecision || !quantOK {
			return v, &Rejection{
				CandidateID: e.ID,
				Constraint:  ConstraintVRAM,
				Required:    e.MinVRAMGB,
				Available:   effVRAM,
				Message: fmt.Sprintf("%s needs %.1f GB VRAM but only %.1f GB is available",
					e.ID, e.MinVRAMGB, effVRAM),
			}
		}
		v.NeedsReducedPrecision = true
		v.Note = "runs at reduced precision; expect some loss of output fidelity"
	}

	// 2. RAM is a hard ceiling with no fallback.
	if e.MinRAMGB > hw.RAMGB {
		return v, &Rejection{
			CandidateID: e.ID,
			Constraint:  ConstraintRAM,
			Required:    e.MinRAMGB,
			Available:   hw.RAMGB,
			Message: fmt.Sprintf("%s needs %.1f GB RAM but only %.1f GB is installed",
				e.ID, e.MinRAMGB, hw.RAMGB),
		}
	}

	// 3. Storage, with the 20% safety margin reserved for workspace files.
	usable := hw.FreeStorageGB * StorageSafetyFactor * tol
	if e.SizeGB > usable {
		return v, &Rejection{
			CandidateID: e.ID,
			Constraint:  ConstraintStorage,
			Required:    e.SizeGB,
			Available:   usable,
			Message: fmt.Sprintf("%s needs %.1f GB of storage but only %.1f GB is usable after the safety margin",
				e.ID, e.SizeGB, usable),
		}
	}

	// 4. Platform restrictions, including the platform's quantization
	// allowlist: a variant shipped in a format the platform cannot load is a
	// platform mismatch even when VRAM would suffice.
	if !e.AllowsPlatform(string(hw.Platform)) {
		return v, &Rejection{
			CandidateID: e.ID,
			Constraint:  ConstraintPlatform,
			Message: fmt.Sprintf("%s is restricted to %v and cannot run on %s",
				e.ID, e.PlatformRestrictions, hw.Platform),
		}
	}
	if e.QuantFormat != "" && !hw.AllowsQuant(e.QuantFormat) {
		if opts.IgnoreQuantAllowlist && e.HasReducedPrecision {
			v.NeedsReducedPrecision = true
			v.Note = "runs at reduced precision; expect some loss of output fidelity"
		} else {
			return v, &Rejection{
				CandidateID: e.ID,
				Constraint:  ConstraintPlatform,
				Message: fmt.Sprintf("%s ships as %s, which %s hardware cannot load",
					e.ID, e.QuantFormat, hw.Platform),
			}
		}
	}

	return v, nil
}
