package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modelscout/modelscout/internal/catalog"
	"github.com/modelscout/modelscout/internal/engine"
	"github.com/modelscout/modelscout/internal/factors"
	"github.com/modelscout/modelscout/internal/hardware"
	"github.com/modelscout/modelscout/internal/manifest"
	"github.com/modelscout/modelscout/internal/projectconfig"
	"github.com/modelscout/modelscout/internal/wizard"
)

type recommendFlags struct {
	catalogPath  string
	hardwarePath string
	preset       string
	set          []string
	tags         []string
	useCase      string
	interactive  bool
	format       string
	manifestPath string
	top          int
	showReasons  bool
}

func newRecommendCommand() *cobra.Command {
	flags := &recommendFlags{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend image generation models for this machine",
		Long: `Filter the model catalog against a hardware snapshot, score survivors
against your preferences, and print a ranked recommendation list.

Preferences come from a preset (see 'modelscout presets'), optionally
adjusted with --set, or from the interactive questionnaire (--interactive).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommendCommand(cmd, flags)
		},
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flags.catalogPath, "catalog", projectconfig.DefaultCatalogPath, "Path to the model catalog YAML")
	cmd.Flags().StringVar(&flags.hardwarePath, "hardware", projectconfig.DefaultHardwarePath, "Path to the hardware snapshot YAML")
	cmd.Flags().StringVar(&flags.preset, "preset", projectconfig.DefaultPreset, "Preference preset to start from")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "Override a factor weight, e.g. --set quality=0.9 (repeatable)")
	cmd.Flags().StringSliceVar(&flags.tags, "tags", nil, "Style tags to match, e.g. --tags photorealistic,cinematic")
	cmd.Flags().StringVar(&flags.useCase, "use-case", "", "Primary use case: text-to-image|image-to-image|video|upscaling")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "Run the preference questionnaire instead of using a preset")
	cmd.Flags().StringVar(&flags.format, "format", projectconfig.DefaultFormat, "Output format: table|json")
	cmd.Flags().StringVar(&flags.manifestPath, "manifest", "", "Write an install manifest for the top candidate to this path")
	cmd.Flags().IntVar(&flags.top, "top", projectconfig.DefaultTopN, "Number of ranked candidates to show")
	cmd.Flags().BoolVar(&flags.showReasons, "explain", false, "Print the full reasoning trace")

	return cmd
}

// applyConfigDefaults overlays .modelscout.yaml values onto flags the user
// left at their defaults. Flags set on the command line always win.
func applyConfigDefaults(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, flags *recommendFlags) {
	f := cmd.Flags()
	if !f.Changed("catalog") {
		flags.catalogPath = cfg.Paths.Catalog
	}
	if !f.Changed("hardware") {
		flags.hardwarePath = cfg.Paths.Hardware
	}
	if !f.Changed("preset") {
		flags.preset = cfg.Preset
	}
	if !f.Changed("format") {
		flags.format = cfg.Output.Format
	}
	if !f.Changed("top") {
		flags.top = cfg.Output.TopN
	}
}

func runRecommendCommand(cmd *cobra.Command, flags *recommendFlags) error {
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return err
	}
	applyConfigDefaults(cmd, cfg, flags)

	if flags.format != "table" && flags.format != "json" {
		return fmt.Errorf("invalid format %q: must be table or json", flags.format)
	}
	if flags.top < 1 {
		return fmt.Errorf("invalid --top %d: must be at least 1", flags.top)
	}

	hw, err := hardware.Load(flags.hardwarePath)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(flags.catalogPath, cfg.GroupingTable())
	if err != nil {
		return err
	}

	prefs, err := resolvePreferences(cmd, flags)
	if err != nil {
		return err
	}

	policy, err := cfg.RankingPolicy()
	if err != nil {
		return err
	}

	result, err := engine.NewWithConfig(policy).Recommend(hw, cat, prefs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Top() == nil {
		if flags.format == "json" {
			if err := renderJSON(out, result, flags.top); err != nil {
				return err
			}
		} else {
			renderReasoning(out, result.Reasoning)
		}
		return &NoViableError{Message: "no viable local candidate; " + result.ResolutionApplied}
	}

	switch flags.format {
	case "json":
		if err := renderJSON(out, result, flags.top); err != nil {
			return err
		}
	default:
		renderTable(out, result, flags.top)
		if flags.showReasons {
			renderReasoning(out, result.Reasoning)
		}
	}

	if flags.manifestPath != "" {
		m, err := manifest.Build(result.Top(), hw)
		if err != nil {
			return err
		}
		if err := m.WriteFile(flags.manifestPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nInstall manifest written to %s\n", flags.manifestPath)
	}

	return nil
}

// resolvePreferences builds the request preferences: preset as the base, then
// --set / --tags / --use-case overrides, or the interactive questionnaire when
// requested (the preset still pre-populates the form).
func resolvePreferences(cmd *cobra.Command, flags *recommendFlags) (factors.Preferences, error) {
	preset, err := factors.LookupPreset(flags.preset)
	if err != nil {
		return factors.Preferences{}, err
	}

	prefs := factors.Preferences{
		Weights:   preset.Weights,
		StyleTags: preset.StyleTags,
		UseCase:   preset.UseCase,
	}

	if flags.interactive {
		got, err := wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout(), prefs)
		if err != nil {
			return factors.Preferences{}, err
		}
		prefs = *got
	}

	if len(flags.set) > 0 {
		overrides, err := parseSetFlags(flags.set)
		if err != nil {
			return factors.Preferences{}, err
		}
		weights, err := factors.ApplyOverrides(prefs.Weights, overrides)
		if err != nil {
			return factors.Preferences{}, err
		}
		prefs.Weights = weights
	}
	if len(flags.tags) > 0 {
		prefs.StyleTags = flags.tags
	}
	if flags.useCase != "" {
		prefs.UseCase = flags.useCase
	}

	return prefs, nil
}

func parseSetFlags(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected factor=value", pair)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}
