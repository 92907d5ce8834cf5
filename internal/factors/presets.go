package factors

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// Preset is a named, canned set of factor weights produced for users who skip
// the onboarding questionnaire.
type Preset struct {
	Name        string
	Description string
	Weights     Weights
	StyleTags   []string
	UseCase     string
}

// presets is the built-in preset table. Weights are policy constants tuned
// against the default catalog, not computed.
var presets = map[string]Preset{
	"photorealism": {
		Name:        "photorealism",
		Description: "Maximum image quality for photographic output; slower generations accepted",
		Weights:     Weights{Quality: 1.0, Speed: 0.2, Control: 0.5, Consistency: 0.7, Simplicity: 0.3},
		StyleTags:   []string{"photorealistic", "cinematic"},
		UseCase:     "text-to-image",
	},
	"anime": {
		Name:        "anime",
		Description: "Stylized illustration and character work",
		Weights:     Weights{Quality: 0.8, Speed: 0.4, Control: 0.7, Consistency: 0.8, Simplicity: 0.4},
		StyleTags:   []string{"anime", "illustration"},
		UseCase:     "text-to-image",
	},
	"fast-drafts": {
		Name:        "fast-drafts",
		Description: "Rapid iteration; quality traded for turnaround",
		Weights:     Weights{Quality: 0.4, Speed: 1.0, Control: 0.3, Consistency: 0.4, Simplicity: 0.8},
		UseCase:     "text-to-image",
	},
	"photo-editing": {
		Name:        "photo-editing",
		Description: "Inpainting and image-to-image correction workflows",
		Weights:     Weights{Quality: 0.8, Speed: 0.3, Control: 1.0, Consistency: 0.6, Simplicity: 0.3},
		UseCase:     "image-to-image",
	},
	"beginner": {
		Name:        "beginner",
		Description: "Simplest possible setup with sensible output quality",
		Weights:     Weights{Quality: 0.6, Speed: 0.6, Control: 0.2, Consistency: 0.5, Simplicity: 1.0},
		UseCase:     "text-to-image",
	},
}

// Presets returns all built-in presets sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPreset finds a built-in preset by name.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Preset{}, fmt.Errorf("unknown preset %q: available presets are %v", name, names)
	}
	return p, nil
}

// overrides is the loosely-typed slider-override payload. Pointer fields
// distinguish "not set" from an explicit zero.
type overrides struct {
	Quality     *float64 `mapstructure:"quality"`
	Speed       *float64 `mapstructure:"speed"`
	Control     *float64 `mapstructure:"control"`
	Consistency *float64 `mapstructure:"consistency"`
	Simplicity  *float64 `mapstructure:"simplicity"`
}

// ApplyOverrides overlays per-field slider overrides (e.g. parsed from
// --set quality=0.9 flags or a config map) onto base weights. Unknown keys are
// rejected so a typo'd factor name fails loudly.
func ApplyOverrides(base Weights, raw map[string]any) (Weights, error) {
	var ov overrides
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &ov,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Weights{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Weights{}, fmt.Errorf("invalid preference override: %w", err)
	}

	out := base
	if ov.Quality != nil {
		out.Quality = *ov.Quality
	}
	if ov.Speed != nil {
		out.Speed = *ov.Speed
	}
	if ov.Control != nil {
		out.Control = *ov.Control
	}
	if ov.Consistency != nil {
		out.Consistency = *ov.Consistency
	}
	if ov.Simplicity != nil {
		out.Simplicity = *ov.Simplicity
	}

	if err := out.Validate(); err != nil {
		return Weights{}, err
	}
	return out, nil
}
